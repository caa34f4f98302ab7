// Package auth covers registration, login and the rest of the account
// lifecycle. Login and logout are the two places where the session store is
// written as a whole.
package auth

import (
	"context"
	"fmt"

	"github.com/shipmate-app/shipmate-go/client"
	"github.com/shipmate-app/shipmate-go/session"
)

type Client struct {
	http    *client.Client
	session *session.Store
}

func New(http *client.Client, store *session.Store) *Client {
	return &Client{http: http, session: store}
}

// LoginRequest carries the credentials plus the device fingerprint the
// backend uses to scope push registrations and concurrent sessions.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	DeviceID  string `json:"deviceId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	UserType  string `json:"userType"`
}

type tokenResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         session.Identity `json:"user"`
}

// Login authenticates and installs the returned identity and credential into
// the session store as one atomic write.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	req := LoginRequest{
		Email:     email,
		Password:  password,
		DeviceID:  session.DeviceID(),
		SessionID: session.SessionID(),
	}

	resp, err := c.http.Post(ctx, "/auth/login", req)
	if err != nil {
		return session.Identity{}, err
	}

	var body tokenResponse
	if err := resp.JSON(&body); err != nil {
		return session.Identity{}, fmt.Errorf("decode login response: %w", err)
	}
	if body.AccessToken == "" {
		return session.Identity{}, fmt.Errorf("login response carried no access token")
	}

	c.session.SetCredential(body.User, body.AccessToken)
	c.session.SetRefreshToken(body.RefreshToken)
	return body.User, nil
}

// Register creates an account and signs it in, mirroring Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (session.Identity, error) {
	resp, err := c.http.Post(ctx, "/auth/register", req)
	if err != nil {
		return session.Identity{}, err
	}

	var body tokenResponse
	if err := resp.JSON(&body); err != nil {
		return session.Identity{}, fmt.Errorf("decode register response: %w", err)
	}
	if body.AccessToken == "" {
		return session.Identity{}, fmt.Errorf("register response carried no access token")
	}

	c.session.SetCredential(body.User, body.AccessToken)
	c.session.SetRefreshToken(body.RefreshToken)
	return body.User, nil
}

// Logout tells the backend to revoke the session and clears the local store.
// The local clear happens regardless of what the server says: a dead session
// on this side must not survive a flaky network.
func (c *Client) Logout(ctx context.Context) {
	_, _ = c.http.Post(ctx, "/auth/logout", nil)
	c.session.Clear()
}

// Me fetches the current profile and refreshes the cached identity without
// touching the credential.
func (c *Client) Me(ctx context.Context) (session.Identity, error) {
	resp, err := c.http.Get(ctx, "/users/me")
	if err != nil {
		return session.Identity{}, err
	}
	var identity session.Identity
	if err := resp.JSON(&identity); err != nil {
		return session.Identity{}, fmt.Errorf("decode profile: %w", err)
	}
	if token, ok := c.session.Token(); ok {
		c.session.SetCredential(identity, token)
	}
	return identity, nil
}

// VerifyEmail confirms the address behind an emailed verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	_, err := c.http.Post(ctx, "/auth/verify-email", map[string]string{"token": token})
	return err
}

// ForgotPassword starts the reset flow for the given address.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.http.Post(ctx, "/auth/forgot-password", map[string]string{"email": email})
	return err
}

// ResetPassword completes the reset flow with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := c.http.Post(ctx, "/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": newPassword,
	})
	return err
}
