package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/realtime"
	"github.com/shipmate-app/shipmate-go/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewStore()
	store.SetCredential(session.Identity{ID: "u-1", UserType: session.UserTypeSender}, "tok-1")

	httpClient, err := client.New(client.Config{BaseURL: server.URL, Session: store})
	if err != nil {
		t.Fatal(err)
	}
	hub, err := realtime.New(realtime.Config{URL: "ws://127.0.0.1:0/ws", Session: store})
	if err != nil {
		t.Fatal(err)
	}
	return New(httpClient, hub, store), store
}

func TestListForBooking(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/b-1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "0" || q.Get("size") != "50" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{
				"id": 7, "bookingId": "b-1", "messageType": TypeText,
				"messageContent": "On my way", "senderId": "d-1", "receiverId": "u-1",
			}},
			"totalElements": 1, "totalPages": 1, "last": true,
		})
	}))

	page, err := c.ListForBooking(context.Background(), "b-1", 0)
	if err != nil {
		t.Fatalf("ListForBooking() error: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].MessageContent != "On my way" {
		t.Errorf("page = %+v", page)
	}
}

func TestSend(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings/b-1/messages" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["message"] != "hello" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 8, "bookingId": "b-1", "messageType": TypeText, "messageContent": "hello",
		})
	}))

	msg, err := c.Send(context.Background(), "b-1", "hello")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if msg.ID != 8 || msg.MessageType != TypeText {
		t.Errorf("msg = %+v", msg)
	}
}

func TestConversations(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{{
			"bookingId": "b-1", "bookingStatus": "IN_PROGRESS",
			"lastMessagePreview": nil, "lastMessageAt": nil, "unreadCount": 3,
		}})
	}))

	convos, err := c.Conversations(context.Background())
	if err != nil {
		t.Fatalf("Conversations() error: %v", err)
	}
	if len(convos) != 1 || convos[0].UnreadCount != 3 || convos[0].LastMessagePreview != nil {
		t.Errorf("convos = %+v", convos)
	}
}

func TestMarkRead(t *testing.T) {
	var got string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
	}))

	if err := c.MarkRead(context.Background(), "b-1"); err != nil {
		t.Fatalf("MarkRead() error: %v", err)
	}
	if got != "/bookings/b-1/messages/read" {
		t.Errorf("path = %q", got)
	}
}

func TestWatchConversationUpdates_RequiresIdentity(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ch, stop, ok := c.WatchConversationUpdates()
	if !ok || ch == nil {
		t.Fatal("authenticated watch should succeed")
	}
	stop()

	store.Clear()
	if _, _, ok := c.WatchConversationUpdates(); ok {
		t.Error("watch without identity should report ok=false")
	}
}
