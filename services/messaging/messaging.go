// Package messaging is the in-booking chat: message history, sending,
// read receipts, conversation summaries and the live typing channel.
package messaging

import (
	"context"
	"fmt"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/realtime"
	"github.com/shipmate-app/shipmate-go/session"
)

// Message types the chat distinguishes.
const (
	TypeSystem         = "SYSTEM"
	TypeText           = "TEXT"
	TypeImage          = "IMAGE"
	TypeLocationUpdate = "LOCATION_UPDATE"
)

const defaultPageSize = 50

type Client struct {
	http    *client.Client
	hub     *realtime.Hub
	session *session.Store
}

func New(http *client.Client, hub *realtime.Hub, store *session.Store) *Client {
	return &Client{http: http, hub: hub, session: store}
}

type Message struct {
	ID             int64  `json:"id"`
	BookingID      string `json:"bookingId"`
	MessageType    string `json:"messageType"`
	MessageContent string `json:"messageContent"`
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	IsRead         bool   `json:"isRead"`
	SentAt         string `json:"sentAt"`
}

// ConversationSummary is one row of the inbox list.
type ConversationSummary struct {
	BookingID     string `json:"bookingId"`
	BookingStatus string `json:"bookingStatus"`

	LastMessagePreview *string `json:"lastMessagePreview"`
	LastMessageAt      *string `json:"lastMessageAt"`

	UnreadCount int `json:"unreadCount"`

	OtherUserName      string `json:"otherUserName,omitempty"`
	OtherUserAvatarURL string `json:"otherUserAvatarUrl,omitempty"`
}

// ListForBooking returns one page of a booking's chat history.
func (c *Client) ListForBooking(ctx context.Context, bookingID string, page int) (client.Page[Message], error) {
	path := fmt.Sprintf("/bookings/%s/messages?page=%d&size=%d", bookingID, page, defaultPageSize)
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return client.Page[Message]{}, err
	}
	var out client.Page[Message]
	if err := resp.JSON(&out); err != nil {
		return client.Page[Message]{}, fmt.Errorf("decode message page: %w", err)
	}
	return out, nil
}

// Send posts a text message into the booking's conversation.
func (c *Client) Send(ctx context.Context, bookingID, text string) (Message, error) {
	resp, err := c.http.Post(ctx, "/bookings/"+bookingID+"/messages", map[string]string{"message": text})
	if err != nil {
		return Message{}, err
	}
	var out Message
	if err := resp.JSON(&out); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return out, nil
}

// MarkRead marks every message in the booking's conversation as read.
func (c *Client) MarkRead(ctx context.Context, bookingID string) error {
	_, err := c.http.Post(ctx, "/bookings/"+bookingID+"/messages/read", nil)
	return err
}

// Conversations returns the caller's inbox.
func (c *Client) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	resp, err := c.http.Get(ctx, "/conversations/me")
	if err != nil {
		return nil, err
	}
	var out []ConversationSummary
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return out, nil
}

// SendTyping announces that the current user is typing in a booking. Lost
// frames are fine, the indicator is cosmetic.
func (c *Client) SendTyping(bookingID string) {
	identity, ok := c.session.Identity()
	if !ok {
		return
	}
	c.hub.Publish("/app/bookings/"+bookingID+"/typing", map[string]string{"userId": identity.ID})
}

// WatchMessages streams new chat messages for a booking.
func (c *Client) WatchMessages(bookingID string) (<-chan realtime.Message, func()) {
	return c.watch("/topic/bookings/" + bookingID + "/messages")
}

// WatchTyping streams typing events for a booking.
func (c *Client) WatchTyping(bookingID string) (<-chan realtime.Message, func()) {
	return c.watch("/topic/bookings/" + bookingID + "/typing")
}

// WatchConversationUpdates streams inbox refresh hints for the current user.
// Returns ok=false when nobody is signed in.
func (c *Client) WatchConversationUpdates() (<-chan realtime.Message, func(), bool) {
	identity, ok := c.session.Identity()
	if !ok {
		return nil, nil, false
	}
	ch, stop := c.watch("/topic/users/" + identity.ID + "/conversation-updates")
	return ch, stop, true
}

func (c *Client) watch(destination string) (<-chan realtime.Message, func()) {
	ch := c.hub.Subscribe(destination)
	return ch, func() { c.hub.Unsubscribe(destination, ch) }
}
