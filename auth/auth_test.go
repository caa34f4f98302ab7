package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/session"
)

func newTestAuth(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := session.NewStore()
	httpClient, err := client.New(client.Config{BaseURL: server.URL, Session: store})
	if err != nil {
		t.Fatal(err)
	}
	return New(httpClient, store), store
}

func TestLogin(t *testing.T) {
	var gotAuth string
	var gotBody LoginRequest

	c, store := newTestAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "tok-1",
			"refreshToken": "rt-1",
			"user": map[string]any{
				"id":       "u-1",
				"email":    "ada@example.com",
				"userType": "SENDER",
			},
		})
	}))

	identity, err := c.Login(context.Background(), "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("login carried Authorization %q, want none", gotAuth)
	}
	if gotBody.DeviceID == "" || gotBody.SessionID == "" {
		t.Errorf("request missing device fingerprint: %+v", gotBody)
	}
	if identity.ID != "u-1" {
		t.Errorf("identity.ID = %q", identity.ID)
	}
	if !store.IsAuthenticated() {
		t.Error("store should be authenticated after login")
	}
	if rt, _ := store.RefreshToken(); rt != "rt-1" {
		t.Errorf("refresh token = %q, want rt-1", rt)
	}
}

func TestLogin_MissingToken(t *testing.T) {
	c, store := newTestAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": "u-1"}})
	}))

	if _, err := c.Login(context.Background(), "a@b.c", "x"); err == nil {
		t.Fatal("Login() with empty token should error")
	}
	if store.IsAuthenticated() {
		t.Error("store must stay clear when login response is unusable")
	}
}

func TestRegister(t *testing.T) {
	c, store := newTestAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "tok-2",
			"refreshToken": "rt-2",
			"user":         map[string]any{"id": "u-2", "userType": "DRIVER"},
		})
	}))

	identity, err := c.Register(context.Background(), RegisterRequest{
		Email: "d@example.com", Password: "x", FirstName: "Dee", LastName: "River", UserType: "DRIVER",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if identity.UserType != session.UserTypeDriver {
		t.Errorf("userType = %q", identity.UserType)
	}
	if !store.IsDriver() {
		t.Error("store should report driver role after register")
	}
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	c, store := newTestAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	store.SetCredential(session.Identity{ID: "u-1"}, "tok-1")

	before := store.Version()
	c.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Error("store must be cleared after logout")
	}
	if store.Version() <= before {
		t.Error("logout must bump the credential version")
	}
}

func TestMe_RefreshesIdentity(t *testing.T) {
	c, store := newTestAuth(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "u-1", "email": "ada@example.com", "verified": true, "userType": "SENDER",
		})
	}))
	store.SetCredential(session.Identity{ID: "u-1", Email: "ada@example.com"}, "tok-1")

	identity, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if !identity.Verified {
		t.Error("identity.Verified should be true")
	}
	if got, ok := store.Identity(); !ok || !got.Verified {
		t.Error("store identity should be refreshed")
	}
	if tok, _ := store.Token(); tok != "tok-1" {
		t.Errorf("token = %q, credential must be untouched", tok)
	}
}
