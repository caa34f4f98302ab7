// Package notifications surfaces the in-app notification feed and its live
// counterparts: per-user pushes, the unread badge and the delivery code queue.
package notifications

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/realtime"
	"github.com/shipmate-app/shipmate-go/session"
)

// Notification categories.
const (
	TypeBookingUpdate   = "BOOKING_UPDATE"
	TypePaymentStatus   = "PAYMENT_STATUS"
	TypeDeliveryStatus  = "DELIVERY_STATUS"
	TypeNewMessage      = "NEW_MESSAGE"
	TypeSystemAlert     = "SYSTEM_ALERT"
	TypeInsuranceUpdate = "INSURANCE_UPDATE"
)

type Client struct {
	http    *client.Client
	hub     *realtime.Hub
	session *session.Store
}

func New(http *client.Client, hub *realtime.Hub, store *session.Store) *Client {
	return &Client{http: http, hub: hub, session: store}
}

type Notification struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Message          string  `json:"message"`
	NotificationType string  `json:"notificationType"`
	ReferenceID      *string `json:"referenceId"`
	ReferenceType    *string `json:"referenceType"`
	IsRead           bool    `json:"isRead"`
	CreatedAt        string  `json:"createdAt"`
}

// ListMine returns one page of the feed, optionally unread entries only.
func (c *Client) ListMine(ctx context.Context, unreadOnly bool, page, size int) (client.Page[Notification], error) {
	path := fmt.Sprintf("/notifications/me?unreadOnly=%t&page=%d&size=%d", unreadOnly, page, size)
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return client.Page[Notification]{}, err
	}
	var out client.Page[Notification]
	if err := resp.JSON(&out); err != nil {
		return client.Page[Notification]{}, fmt.Errorf("decode notification page: %w", err)
	}
	return out, nil
}

// MarkRead marks one notification read and returns the remaining unread count.
func (c *Client) MarkRead(ctx context.Context, id string) (int, error) {
	resp, err := c.http.Post(ctx, "/notifications/"+id+"/read", nil)
	if err != nil {
		return 0, err
	}
	return parseCount(resp)
}

// MarkAllRead clears the feed and returns the new unread count, always zero
// on success.
func (c *Client) MarkAllRead(ctx context.Context) (int, error) {
	resp, err := c.http.Post(ctx, "/notifications/me/read-all", nil)
	if err != nil {
		return 0, err
	}
	return parseCount(resp)
}

// UnreadCount returns the badge value. Polled by UIs, so the endpoint stays
// out of the busy indicator.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	resp, err := c.http.Get(ctx, "/notifications/me/unread-count")
	if err != nil {
		return 0, err
	}
	return parseCount(resp)
}

// Watch streams new notifications for the current user. Returns ok=false
// when nobody is signed in.
func (c *Client) Watch() (<-chan realtime.Message, func(), bool) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, nil, false
	}
	ch, stop := c.watch("/topic/users/" + identity.ID + "/notifications")
	return ch, stop, true
}

// WatchUnreadCount streams live badge updates for the current user.
func (c *Client) WatchUnreadCount() (<-chan realtime.Message, func(), bool) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, nil, false
	}
	ch, stop := c.watch("/topic/users/" + identity.ID + "/notifications/unread-count")
	return ch, stop, true
}

// WatchDeliveryCode streams one-time delivery confirmation codes pushed to
// the signed-in user.
func (c *Client) WatchDeliveryCode() (<-chan realtime.Message, func()) {
	return c.watch("/user/queue/delivery-code")
}

func (c *Client) watch(destination string) (<-chan realtime.Message, func()) {
	ch := c.hub.Subscribe(destination)
	return ch, func() { c.hub.Unsubscribe(destination, ch) }
}

// parseCount reads the bare number bodies these endpoints answer with.
func parseCount(resp *client.Response) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(resp.Body)))
	if err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return n, nil
}
