// Package apiclient wraps the remote scheduling service's REST API.  A
// Client bound to a session token attaches it as a bearer credential;
// every non-2xx answer becomes a *RequestError carrying the service's
// message.  Calls are never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client calls the scheduling service.  The zero token means anonymous.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

// New returns an anonymous client for baseURL (e.g.
// "https://localhost:7131/api").  A nil httpClient gets a 10 second
// timeout so a hung service surfaces as an error instead of a stuck page.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// LoginResponse is the body of a successful POST /Auth/login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login posts credentials.  It never sends a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, call{method: http.MethodPost, path: "/Auth/login", body: body, fallback: "Login failed"}, &out)
	return out, err
}

// ListSlots returns the authenticated listing filtered by f.
func (c *Client) ListSlots(ctx context.Context, f model.FilterCriteria) ([]model.Slot, error) {
	var out []model.Slot
	err := c.do(ctx, call{method: http.MethodGet, path: "/Slots", query: f.Query(), auth: true, fallback: "Failed to fetch slots"}, &out)
	return out, err
}

// ListAvailableSlots returns the public availability listing.  Only the
// date filter applies and no credential is sent.
func (c *Client) ListAvailableSlots(ctx context.Context, date string) ([]model.Slot, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out []model.Slot
	err := c.do(ctx, call{method: http.MethodGet, path: "/Slots", query: q, fallback: "Failed to fetch available slots"}, &out)
	return out, err
}

// CreateSlot creates a slot.
func (c *Client) CreateSlot(ctx context.Context, req model.CreateSlotRequest) (model.Slot, error) {
	var out model.Slot
	err := c.do(ctx, call{method: http.MethodPost, path: "/slots", body: req, auth: true, fallback: "Failed to create slot"}, &out)
	return out, err
}

// UpdateSlot applies a partial update.
func (c *Client) UpdateSlot(ctx context.Context, id model.ID, req model.UpdateSlotRequest) (model.Slot, error) {
	var out model.Slot
	err := c.do(ctx, call{method: http.MethodPut, path: "/slots/" + url.PathEscape(id.String()), body: req, auth: true, fallback: "Failed to update slot"}, &out)
	return out, err
}

// DeleteSlot removes a slot.
func (c *Client) DeleteSlot(ctx context.Context, id model.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/slots/" + url.PathEscape(id.String()), auth: true, fallback: "Failed to delete slot"}, nil)
}

// BookSlot books a slot for the token's user.
func (c *Client) BookSlot(ctx context.Context, id model.ID) (model.Slot, error) {
	var out model.Slot
	err := c.do(ctx, call{method: http.MethodPut, path: "/Slots/" + url.PathEscape(id.String()) + "/book", auth: true, fallback: "Failed to book slot"}, &out)
	return out, err
}

// ListUsers returns the bookable users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, call{method: http.MethodGet, path: "/user", auth: true, fallback: "Failed to fetch users"}, &out)
	return out, err
}

type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	auth     bool
	fallback string
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var rdr io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return &RequestError{Message: cl.fallback, Err: fmt.Errorf("encode body: %w", err)}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, rdr)
	if err != nil {
		return &RequestError{Message: cl.fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed",
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Error(err))
		return &RequestError{Message: cl.fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &RequestError{Status: resp.StatusCode, Message: cl.fallback, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("remote call",
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Message: messageFrom(body, cl.fallback)}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Status: resp.StatusCode, Message: cl.fallback, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
