// Package client implements the authenticated request pipeline for the
// ShipMate API: credential attachment, failure classification, single-flight
// token refresh shared by all concurrently failing requests, and user-facing
// failure notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shipmate-app/shipmate-go/session"
)

// Client wraps every outgoing HTTP call. Domain services consume it through
// Do and the method sugar; they never see the refresh machinery.
type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Store
	policy   Policy
	busy     *BusyCounter
	notifier Notifier
	refresh  refreshGroup
	log      zerolog.Logger
}

// Config holds pipeline configuration.
type Config struct {
	BaseURL    string
	Session    *session.Store
	HTTPClient *http.Client
	Policy     Policy
	Busy       *BusyCounter
	Notifier   Notifier
	Logger     zerolog.Logger
}

// New creates a request pipeline.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("Session is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	policy := cfg.Policy
	if policy.isEmpty() {
		policy = DefaultPolicy()
	}
	busy := cfg.Busy
	if busy == nil {
		busy = NewBusyCounter(nil)
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		http:     httpClient,
		session:  cfg.Session,
		policy:   policy,
		busy:     busy,
		notifier: notifier,
		log:      cfg.Logger,
	}, nil
}

// Busy returns the busy counter driven by this pipeline.
func (c *Client) Busy() *BusyCounter {
	return c.busy
}

// Response is a completed API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Do executes one request against the API. body, when non-nil, is sent as
// JSON. The returned error wraps *APIError for non-2xx responses.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	exempt := c.policy.IsExempt(path)

	if !c.policy.IsLowNoise(path) {
		c.busy.Add()
		defer c.busy.Done()
	}

	var token string
	if !exempt {
		token, _ = c.session.Token()
	}

	resp, err := c.send(ctx, method, path, body, token)
	if err != nil {
		if !exempt {
			c.notifier.Error(genericErrorMessage)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}
	return c.classify(ctx, method, path, body, resp, exempt, token != "")
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// classify routes a non-2xx first response. Only one class is recovered
// here: an expired credential on a credentialed, non-exempt request.
func (c *Client) classify(ctx context.Context, method, path string, body any, resp *Response, exempt, credentialed bool) (*Response, error) {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.Body),
		Body:       resp.Body,
	}

	switch {
	case exempt:
		// Auth endpoints answer for themselves; wrapping the refresh call
		// here would recurse forever.
		return resp, fmt.Errorf("%s %s: %w", method, path, apiErr)

	case resp.StatusCode == http.StatusNotFound && c.policy.Allows404(path):
		// Valid domain state ("no profile yet"); the caller interprets it.
		return resp, fmt.Errorf("%s %s: %w", method, path, apiErr)

	case resp.StatusCode == http.StatusUnauthorized && credentialed:
		return c.recover(ctx, method, path, body, apiErr)

	case resp.StatusCode == http.StatusForbidden:
		c.notifier.Error("Access denied.")
		return resp, fmt.Errorf("%s %s: %w: %w", method, path, ErrAccessDenied, apiErr)

	default:
		c.notifyAPIError(apiErr)
		return resp, fmt.Errorf("%s %s: %w", method, path, apiErr)
	}
}

// recover refreshes the credential through the single-flight group and
// replays the original request once. A failed wave has already cleared the
// session and raised the session-expired notification.
func (c *Client) recover(ctx context.Context, method, path string, body any, cause *APIError) (*Response, error) {
	if tok, ok := c.session.Token(); ok {
		if claims, err := session.PeekClaims(tok); err == nil {
			c.log.Debug().
				Str("path", path).
				Time("token_exp", claims.ExpiresAt).
				Msg("credential rejected, entering refresh wave")
		}
	}

	// The wave is shared by every concurrently 401'd request. It runs on a
	// context detached from this caller, so a caller that goes away mid-wave
	// cannot abort the refresh for the others; the HTTP client timeout still
	// bounds it.
	token, err := c.refresh.Do(ctx, func() (string, error) {
		return c.refreshCredential(context.WithoutCancel(ctx))
	})
	if err != nil {
		// A waiter's own cancellation is not a session verdict; the wave
		// keeps running without it.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrSessionExpired, cause)
	}

	resp, err := c.send(ctx, method, path, body, token)
	if err != nil {
		if ctx.Err() == nil {
			c.notifier.Error(genericErrorMessage)
		}
		return nil, fmt.Errorf("%s %s (retry): %w", method, path, err)
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}

	// The request was replayed once; classify without a second refresh.
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.Body),
		Body:       resp.Body,
	}
	switch {
	case resp.StatusCode == http.StatusNotFound && c.policy.Allows404(path):
		return resp, fmt.Errorf("%s %s: %w", method, path, apiErr)
	case resp.StatusCode == http.StatusForbidden:
		c.notifier.Error("Access denied.")
		return resp, fmt.Errorf("%s %s: %w: %w", method, path, ErrAccessDenied, apiErr)
	default:
		c.notifyAPIError(apiErr)
		return resp, fmt.Errorf("%s %s: %w", method, path, apiErr)
	}
}

// refreshCredential is the leader body of a refresh wave. It talks to the
// refresh endpoint directly through send, so a 401 from the endpoint can
// never re-enter the pipeline. Any failure ends the session.
func (c *Client) refreshCredential(ctx context.Context) (string, error) {
	refreshToken, ok := c.session.RefreshToken()
	if !ok {
		c.expireSession()
		return "", fmt.Errorf("refresh: no refresh token")
	}

	req := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh", req, "")
	if err != nil {
		c.expireSession()
		return "", fmt.Errorf("refresh: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.expireSession()
		return "", fmt.Errorf("refresh: %w", &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(resp.Body),
			Body:       resp.Body,
		})
	}

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := resp.JSON(&out); err != nil {
		c.expireSession()
		return "", fmt.Errorf("refresh: decode response: %w", err)
	}
	if out.AccessToken == "" {
		c.expireSession()
		return "", fmt.Errorf("refresh: empty access token")
	}

	c.session.SetToken(out.AccessToken)
	if out.RefreshToken != "" {
		c.session.SetRefreshToken(out.RefreshToken)
	}
	c.log.Info().Uint64("credential_version", c.session.Version()).Msg("credential refreshed")

	return out.AccessToken, nil
}

// expireSession runs once per failed wave: the leader clears the store and
// raises the single session-expired notification on behalf of all waiters.
func (c *Client) expireSession() {
	c.session.Clear()
	c.notifier.Error("Session expired. Please login again.")
	c.log.Warn().Msg("refresh failed, session cleared")
}

func (c *Client) notifyAPIError(apiErr *APIError) {
	msg := apiErr.Message
	if msg == "" {
		msg = genericErrorMessage
	}
	c.notifier.Error(msg)
}

// send is the raw HTTP path: no classification, no refresh, no busy counter.
func (c *Client) send(ctx context.Context, method, path string, body any, token string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
