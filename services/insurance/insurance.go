// Package insurance handles claims against insured shipments.
package insurance

import (
	"context"
	"fmt"

	"github.com/shipmate-app/shipmate-go/client"
)

// Claim reasons.
const (
	ReasonDamaged = "DAMAGED"
	ReasonLost    = "LOST"
	ReasonOther   = "OTHER"
)

// Claim states assigned by the review pipeline.
const (
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusPaid        = "PAID"
)

type Client struct {
	http *client.Client
}

func New(http *client.Client) *Client {
	return &Client{http: http}
}

type Claim struct {
	ID         string `json:"id"`
	ShipmentID string `json:"shipmentId"`

	DeclaredValueSnapshot float64 `json:"declaredValueSnapshot"`
	CoverageAmount        float64 `json:"coverageAmount"`
	DeductibleRate        float64 `json:"deductibleRate"`
	CompensationAmount    float64 `json:"compensationAmount"`

	ClaimReason string `json:"claimReason"`
	ClaimStatus string `json:"claimStatus"`

	Description string   `json:"description,omitempty"`
	Photos      []string `json:"photos"`

	AdminNotes *string `json:"adminNotes"`

	CreatedAt  string  `json:"createdAt"`
	ResolvedAt *string `json:"resolvedAt"`
}

type SubmitRequest struct {
	ClaimReason string   `json:"claimReason"`
	Description string   `json:"description,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

// SubmitClaim opens a claim against a shipment.
func (c *Client) SubmitClaim(ctx context.Context, shipmentID string, req SubmitRequest) (Claim, error) {
	resp, err := c.http.Post(ctx, "/insurance/shipments/"+shipmentID, req)
	if err != nil {
		return Claim{}, err
	}
	return decodeClaim(resp)
}

// ClaimByShipment returns the claim attached to a shipment, ok=false when
// none was ever filed.
func (c *Client) ClaimByShipment(ctx context.Context, shipmentID string) (Claim, bool, error) {
	resp, err := c.http.Get(ctx, "/insurance/shipments/"+shipmentID)
	if err != nil {
		if client.IsNotFound(err) {
			return Claim{}, false, nil
		}
		return Claim{}, false, err
	}
	claim, err := decodeClaim(resp)
	if err != nil {
		return Claim{}, false, err
	}
	return claim, true, nil
}

// MyClaims returns every claim the caller has filed.
func (c *Client) MyClaims(ctx context.Context) ([]Claim, error) {
	resp, err := c.http.Get(ctx, "/insurance/me")
	if err != nil {
		return nil, err
	}
	var out []Claim
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return out, nil
}

func decodeClaim(resp *client.Response) (Claim, error) {
	var out Claim
	if err := resp.JSON(&out); err != nil {
		return Claim{}, fmt.Errorf("decode claim: %w", err)
	}
	return out, nil
}
