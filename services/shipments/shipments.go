// Package shipments exposes the sender-facing shipment lifecycle: create,
// list, edit, price and move a package through its delivery states.
package shipments

import (
	"context"
	"fmt"

	"github.com/shipmate-app/shipmate-go/client"
)

// Status values a shipment moves through.
const (
	StatusCreated   = "CREATED"
	StatusAssigned  = "ASSIGNED"
	StatusInTransit = "IN_TRANSIT"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

type Client struct {
	http *client.Client
}

func New(http *client.Client) *Client {
	return &Client{http: http}
}

type CreateRequest struct {
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
}

type UpdateRequest struct {
	PickupAddress   string `json:"pickupAddress"`
	DeliveryAddress string `json:"deliveryAddress"`

	PackageDescription string  `json:"packageDescription,omitempty"`
	PackageWeight      float64 `json:"packageWeight"`

	RequestedPickupDate   string `json:"requestedPickupDate"`
	RequestedDeliveryDate string `json:"requestedDeliveryDate"`
}

// AssignedDriver is the driver summary embedded in a shipment once a booking
// claims it.
type AssignedDriver struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	AvatarURL   *string `json:"avatarUrl"`
	VehicleType string  `json:"vehicleType"`
}

type Shipment struct {
	ID       string `json:"id"`
	SenderID string `json:"senderId"`

	PickupAddress   string  `json:"pickupAddress"`
	PickupLatitude  float64 `json:"pickupLatitude"`
	PickupLongitude float64 `json:"pickupLongitude"`

	DeliveryAddress   string  `json:"deliveryAddress"`
	DeliveryLatitude  float64 `json:"deliveryLatitude"`
	DeliveryLongitude float64 `json:"deliveryLongitude"`

	PickupOrder   *int `json:"pickupOrder"`
	DeliveryOrder *int `json:"deliveryOrder"`

	PackageDescription string  `json:"packageDescription"`
	PackageWeight      float64 `json:"packageWeight"`
	PackageValue       float64 `json:"packageValue"`

	RequestedPickupDate   string `json:"requestedPickupDate"`
	RequestedDeliveryDate string `json:"requestedDeliveryDate"`

	BasePrice         float64 `json:"basePrice"`
	ExtraInsuranceFee float64 `json:"extraInsuranceFee"`

	Status string   `json:"status"`
	Photos []string `json:"photos"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	Driver *AssignedDriver `json:"driver,omitempty"`
}

type EstimateRequest struct {
	PickupLatitude    float64 `json:"pickupLatitude"`
	PickupLongitude   float64 `json:"pickupLongitude"`
	DeliveryLatitude  float64 `json:"deliveryLatitude"`
	DeliveryLongitude float64 `json:"deliveryLongitude"`
	PackageWeight     float64 `json:"packageWeight"`
}

type Estimate struct {
	DistanceKm         float64 `json:"distanceKm"`
	EstimatedBasePrice float64 `json:"estimatedBasePrice"`
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (Shipment, error) {
	resp, err := c.http.Post(ctx, "/shipments", req)
	if err != nil {
		return Shipment{}, err
	}
	return decodeShipment(resp)
}

func (c *Client) Get(ctx context.Context, id string) (Shipment, error) {
	resp, err := c.http.Get(ctx, "/shipments/"+id)
	if err != nil {
		return Shipment{}, err
	}
	return decodeShipment(resp)
}

// ListMine returns the caller's shipments, newest first.
func (c *Client) ListMine(ctx context.Context, page, size int) (client.Page[Shipment], error) {
	path := fmt.Sprintf("/shipments/me?page=%d&size=%d&sort=createdAt,desc", page, size)
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return client.Page[Shipment]{}, err
	}
	var out client.Page[Shipment]
	if err := resp.JSON(&out); err != nil {
		return client.Page[Shipment]{}, fmt.Errorf("decode shipment page: %w", err)
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (Shipment, error) {
	resp, err := c.http.Put(ctx, "/shipments/"+id, req)
	if err != nil {
		return Shipment{}, err
	}
	return decodeShipment(resp)
}

// Estimate asks the pricing engine for a distance and base price without
// creating anything.
func (c *Client) Estimate(ctx context.Context, req EstimateRequest) (Estimate, error) {
	resp, err := c.http.Post(ctx, "/pricing/estimate", req)
	if err != nil {
		return Estimate{}, err
	}
	var out Estimate
	if err := resp.JSON(&out); err != nil {
		return Estimate{}, fmt.Errorf("decode estimate: %w", err)
	}
	return out, nil
}

func (c *Client) MarkInTransit(ctx context.Context, id string) error {
	_, err := c.http.Post(ctx, "/shipments/"+id+"/in-transit", nil)
	return err
}

func (c *Client) MarkDelivered(ctx context.Context, id string) error {
	_, err := c.http.Post(ctx, "/shipments/"+id+"/deliver", nil)
	return err
}

func (c *Client) Cancel(ctx context.Context, id string) error {
	_, err := c.http.Post(ctx, "/shipments/"+id+"/cancel", nil)
	return err
}

func decodeShipment(resp *client.Response) (Shipment, error) {
	var out Shipment
	if err := resp.JSON(&out); err != nil {
		return Shipment{}, fmt.Errorf("decode shipment: %w", err)
	}
	return out, nil
}
