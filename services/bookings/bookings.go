// Package bookings covers the driver side of the marketplace: claiming
// shipments into a booking and driving it through its lifecycle.
package bookings

import (
	"context"
	"fmt"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/realtime"
)

const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

type Client struct {
	http *client.Client
	hub  *realtime.Hub
}

func New(http *client.Client, hub *realtime.Hub) *Client {
	return &Client{http: http, hub: hub}
}

// BookedShipment is the slim shipment view embedded in a booking.
type BookedShipment struct {
	ID              string `json:"id"`
	PickupAddress   string `json:"pickupAddress"`
	DeliveryAddress string `json:"deliveryAddress"`
}

type Booking struct {
	ID             string           `json:"id"`
	Status         string           `json:"status"`
	TotalPrice     float64          `json:"totalPrice"`
	DriverEarnings float64          `json:"driverEarnings"`
	Shipments      []BookedShipment `json:"shipments"`
}

// Create claims the given shipments into a new pending booking.
func (c *Client) Create(ctx context.Context, shipmentIDs []string) (Booking, error) {
	resp, err := c.http.Post(ctx, "/bookings", map[string][]string{"shipmentIds": shipmentIDs})
	if err != nil {
		return Booking{}, err
	}
	return decodeBooking(resp)
}

func (c *Client) Get(ctx context.Context, id string) (Booking, error) {
	resp, err := c.http.Get(ctx, "/bookings/"+id)
	if err != nil {
		return Booking{}, err
	}
	return decodeBooking(resp)
}

func (c *Client) Confirm(ctx context.Context, id string) (Booking, error) {
	return c.transition(ctx, id, "confirm")
}

func (c *Client) Start(ctx context.Context, id string) (Booking, error) {
	return c.transition(ctx, id, "start")
}

func (c *Client) Complete(ctx context.Context, id string) (Booking, error) {
	return c.transition(ctx, id, "complete")
}

func (c *Client) Cancel(ctx context.Context, id string) (Booking, error) {
	return c.transition(ctx, id, "cancel")
}

// Active returns the caller's in-flight booking, or ok=false when there is
// none. The backend answers null for no booking, not 404. Polled by UIs, so
// the endpoint is kept out of the busy indicator.
func (c *Client) Active(ctx context.Context) (Booking, bool, error) {
	resp, err := c.http.Get(ctx, "/bookings/me/active")
	if err != nil {
		return Booking{}, false, err
	}
	if len(resp.Body) == 0 || string(resp.Body) == "null" {
		return Booking{}, false, nil
	}
	var out Booking
	if err := resp.JSON(&out); err != nil {
		return Booking{}, false, fmt.Errorf("decode active booking: %w", err)
	}
	return out, true, nil
}

// Watch streams live updates for one booking. The returned stop function
// releases the subscription.
func (c *Client) Watch(id string) (<-chan realtime.Message, func()) {
	destination := "/topic/bookings/" + id
	ch := c.hub.Subscribe(destination)
	return ch, func() { c.hub.Unsubscribe(destination, ch) }
}

func (c *Client) transition(ctx context.Context, id, action string) (Booking, error) {
	resp, err := c.http.Post(ctx, "/bookings/"+id+"/"+action, nil)
	if err != nil {
		return Booking{}, err
	}
	return decodeBooking(resp)
}

func decodeBooking(resp *client.Response) (Booking, error) {
	var out Booking
	if err := resp.JSON(&out); err != nil {
		return Booking{}, fmt.Errorf("decode booking: %w", err)
	}
	return out, nil
}
