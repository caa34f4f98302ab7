// Package drivers covers the driver's own surface: the application and
// profile, location reporting, shipment matching and earnings.
package drivers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shipmate-app/shipmate-go/client"
)

// Profile states assigned by the review pipeline.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusSuspended = "SUSPENDED"
)

// Vehicle classes a driver can register.
const (
	VehicleCar        = "CAR"
	VehicleVan        = "VAN"
	VehicleMotorcycle = "MOTORCYCLE"
	VehicleTruck      = "TRUCK"
	VehicleBicycle    = "BICYCLE"
)

// ErrNotApplied marks a user who has no driver profile yet.
var ErrNotApplied = errors.New("driver profile not found")

type Client struct {
	http *client.Client
}

func New(http *client.Client) *Client {
	return &Client{http: http}
}

type Profile struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	VehicleType       string  `json:"vehicleType"`
	MaxWeightCapacity float64 `json:"maxWeightCapacity"`
	ApprovedAt        *string `json:"approvedAt"`
}

type ApplyRequest struct {
	LicenseNumber      string  `json:"licenseNumber"`
	VehicleType        string  `json:"vehicleType"`
	MaxWeightCapacity  float64 `json:"maxWeightCapacity"`
	VehicleDescription string  `json:"vehicleDescription"`
}

// MatchMetrics scores one candidate shipment against the driver's position.
type MatchMetrics struct {
	DistanceToPickupKm float64  `json:"distanceToPickupKm"`
	PickupToDeliveryKm float64  `json:"pickupToDeliveryKm"`
	EstimatedDetourKm  *float64 `json:"estimatedDetourKm"`
	Score              float64  `json:"score"`
}

// MatchShipment is the shipment view the matcher returns.
type MatchShipment struct {
	ID       string `json:"id"`
	SenderID string `json:"senderId"`

	PickupAddress   string  `json:"pickupAddress"`
	PickupLatitude  float64 `json:"pickupLatitude"`
	PickupLongitude float64 `json:"pickupLongitude"`

	DeliveryAddress   string  `json:"deliveryAddress"`
	DeliveryLatitude  float64 `json:"deliveryLatitude"`
	DeliveryLongitude float64 `json:"deliveryLongitude"`

	PackageDescription string  `json:"packageDescription,omitempty"`
	PackageWeight      float64 `json:"packageWeight"`
	PackageValue       float64 `json:"packageValue"`

	RequestedPickupDate   string `json:"requestedPickupDate"`
	RequestedDeliveryDate string `json:"requestedDeliveryDate"`

	BasePrice float64 `json:"basePrice"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type Match struct {
	Shipment MatchShipment `json:"shipment"`
	Metrics  MatchMetrics  `json:"metrics"`
}

type Earning struct {
	ID               string  `json:"id"`
	ShipmentID       string  `json:"shipmentId"`
	PaymentID        string  `json:"paymentId"`
	GrossAmount      float64 `json:"grossAmount"`
	CommissionAmount float64 `json:"commissionAmount"`
	NetAmount        float64 `json:"netAmount"`
	PayoutStatus     string  `json:"payoutStatus"`
	EarningType      string  `json:"earningType"`
	CreatedAt        string  `json:"createdAt"`
}

type EarningsSummary struct {
	TotalGross      float64 `json:"totalGross"`
	TotalCommission float64 `json:"totalCommission"`
	TotalNet        float64 `json:"totalNet"`
	TotalPending    float64 `json:"totalPending"`
	TotalPaid       float64 `json:"totalPaid"`
}

// Profile returns the caller's driver profile. A user who never applied gets
// ErrNotApplied rather than a surfaced API failure.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	resp, err := c.http.Get(ctx, "/drivers/me")
	if err != nil {
		if client.IsNotFound(err) {
			return Profile{}, ErrNotApplied
		}
		return Profile{}, err
	}
	var out Profile
	if err := resp.JSON(&out); err != nil {
		return Profile{}, fmt.Errorf("decode driver profile: %w", err)
	}
	return out, nil
}

// Apply submits a driver application; the returned profile starts PENDING.
func (c *Client) Apply(ctx context.Context, req ApplyRequest) (Profile, error) {
	resp, err := c.http.Post(ctx, "/drivers/apply", req)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	if err := resp.JSON(&out); err != nil {
		return Profile{}, fmt.Errorf("decode driver profile: %w", err)
	}
	return out, nil
}

// UpdateLocation reports the driver's current position. The matcher reads it
// server-side.
func (c *Client) UpdateLocation(ctx context.Context, latitude, longitude float64) error {
	_, err := c.http.Post(ctx, "/drivers/me/location", map[string]float64{
		"latitude":  latitude,
		"longitude": longitude,
	})
	return err
}

// Matches fetches nearby open shipments ranked for this driver. Zero values
// leave the corresponding server defaults in place.
func (c *Client) Matches(ctx context.Context, radiusKm float64, maxResults int) ([]Match, error) {
	q := url.Values{}
	if radiusKm > 0 {
		q.Set("radiusKm", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}
	path := "/matching/shipments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var out []Match
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return out, nil
}

// EarningsSummary returns lifetime totals.
func (c *Client) EarningsSummary(ctx context.Context) (EarningsSummary, error) {
	resp, err := c.http.Get(ctx, "/earnings/summary")
	if err != nil {
		return EarningsSummary{}, err
	}
	var out EarningsSummary
	if err := resp.JSON(&out); err != nil {
		return EarningsSummary{}, fmt.Errorf("decode earnings summary: %w", err)
	}
	return out, nil
}

// Earnings returns one page of the per-shipment ledger.
func (c *Client) Earnings(ctx context.Context, page int) (client.Page[Earning], error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf("/earnings?page=%d", page))
	if err != nil {
		return client.Page[Earning]{}, err
	}
	var out client.Page[Earning]
	if err := resp.JSON(&out); err != nil {
		return client.Page[Earning]{}, fmt.Errorf("decode earnings page: %w", err)
	}
	return out, nil
}
