package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	service "github.com/okian/cricksim/internal/app"
	"github.com/okian/cricksim/internal/domain/match"
	"github.com/okian/cricksim/internal/domain/model"
	"github.com/okian/cricksim/internal/domain/ratings"
	"github.com/okian/cricksim/internal/domain/types"
)

// Sentinel kinds for client errors.
var (
	ErrStatus      = errors.New("unexpected status")
	ErrUnhealthy   = errors.New("service unhealthy")
	ErrVerify      = errors.New("verification failed")
	ErrIncomplete  = errors.New("match did not complete")
	ErrNoReference = errors.New("reference data unavailable")
)

// apiError mirrors the server's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the match API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client with a request timeout.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{base: base, http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e apiError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%w: %s %s: %d %s: %s", ErrStatus, method, path, resp.StatusCode, e.Code, e.Message)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health checks /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return errors.Join(ErrUnhealthy, err)
	}
	return nil
}

// Ratings fetches the dropdown options for every style.
func (c *Client) Ratings(ctx context.Context) (map[string]ratings.Options, error) {
	var out map[string]ratings.Options
	return out, c.do(ctx, http.MethodGet, "/api/v1/ratings", nil, &out)
}

// Conditions fetches the toss condition values.
func (c *Client) Conditions(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	return out, c.do(ctx, http.MethodGet, "/api/v1/conditions", nil, &out)
}

// Create starts a match.
func (c *Client) Create(ctx context.Context, req service.CreateRequest) (match.View, error) {
	var v match.View
	return v, c.do(ctx, http.MethodPost, "/api/v1/matches", req, &v)
}

// Match reads a snapshot.
func (c *Client) Match(ctx context.Context, id string) (match.View, error) {
	var v match.View
	return v, c.do(ctx, http.MethodGet, "/api/v1/matches/"+id, nil, &v)
}

// Toss calls the toss.
func (c *Client) Toss(ctx context.Context, id string, req service.TossRequest) (service.TossResponse, error) {
	var out service.TossResponse
	return out, c.do(ctx, http.MethodPost, "/api/v1/matches/"+id+"/toss", req, &out)
}

// Decide chooses to bat or bowl.
func (c *Client) Decide(ctx context.Context, id, decision string) (match.View, error) {
	var v match.View
	return v, c.do(ctx, http.MethodPost, "/api/v1/matches/"+id+"/decision", map[string]string{"decision": decision}, &v)
}

// StartSecondInnings leaves the innings break.
func (c *Client) StartSecondInnings(ctx context.Context, id string) (match.View, error) {
	var v match.View
	return v, c.do(ctx, http.MethodPost, "/api/v1/matches/"+id+"/innings", nil, &v)
}

// Offer starts a ball.
func (c *Client) Offer(ctx context.Context, id string, d model.Delivery) (service.OfferResponse, error) {
	var out service.OfferResponse
	return out, c.do(ctx, http.MethodPost, "/api/v1/matches/"+id+"/offer", map[string]model.Delivery{"delivery": d}, &out)
}

// Resolve finishes a ball.
func (c *Client) Resolve(ctx context.Context, id string, commit match.Commit) (service.ResolveResponse, error) {
	var out service.ResolveResponse
	return out, c.do(ctx, http.MethodPost, "/api/v1/matches/"+id+"/resolve", commit, &out)
}

// Results reads the results board.
func (c *Client) Results(ctx context.Context, limit int) ([]types.Entry, error) {
	var out []types.Entry
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/results?limit=%d", limit), nil, &out)
}
