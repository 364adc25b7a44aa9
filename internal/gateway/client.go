// Package gateway is the REST client for the remote route backend. Each
// backend operation has one typed method; failures are returned as *Error
// with a kind the caller can branch on, never swallowed. No view or cache
// logic lives here — only HTTP and type mapping.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/guzmanes/routeboard/internal/domain"
)

// Client issues requests against a single backend base URL.
type Client struct {
	baseURL     string
	http        *http.Client
	log         *slog.Logger
	clientID    string
	listRetries uint64
}

// New constructs a Client for the backend at baseURL. A nil httpClient gets
// a default with a 10 second timeout. listRetries is the number of extra
// attempts for the idempotent route-list fetch; mutations are never retried.
func New(baseURL string, httpClient *http.Client, listRetries int, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	if listRetries < 0 {
		listRetries = 0
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
		// Stable per-process ID sent with every request so backend logs can
		// correlate calls from one client instance.
		clientID:    uuid.NewString(),
		listRetries: uint64(listRetries),
	}
}

// ListRoutes fetches the full route list. Transport and 5xx failures are
// retried with constant backoff up to the configured attempt budget; the
// call is a plain GET, so repeating it is safe.
func (c *Client) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	const op = "list routes"

	var routes []domain.Route
	backoff := retry.WithMaxRetries(c.listRetries, retry.NewConstant(300*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		routes = nil
		err := c.do(ctx, op, http.MethodGet, "/routes", nil, &routes)
		if err == nil {
			return nil
		}
		var ge *Error
		if errors.As(err, &ge) && (ge.Kind == KindUnavailable || ge.Status >= 500) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return routes, nil
}

// CreateRoute submits the descriptive fields of a new route and returns the
// created record with its server-assigned id.
func (c *Client) CreateRoute(ctx context.Context, in domain.RouteInput) (domain.Route, error) {
	var created domain.Route
	if err := c.do(ctx, "create route", http.MethodPost, "/routes", in, &created); err != nil {
		return domain.Route{}, err
	}
	return created, nil
}

// UpdateRoute overwrites the descriptive fields of an existing route.
// The participant list is untouched by this call.
func (c *Client) UpdateRoute(ctx context.Context, id int64, in domain.RouteInput) (domain.Route, error) {
	var updated domain.Route
	path := fmt.Sprintf("/routes/%d", id)
	if err := c.do(ctx, "update route", http.MethodPut, path, in, &updated); err != nil {
		return domain.Route{}, err
	}
	return updated, nil
}

// DeleteRoute removes a route by id.
func (c *Client) DeleteRoute(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/routes/%d", id)
	return c.do(ctx, "delete route", http.MethodDelete, path, nil, nil)
}

// JoinRoute adds username to the route's participant list and returns the
// updated route. The backend owns deduplication; the client does not assume
// either behavior for repeat joins.
func (c *Client) JoinRoute(ctx context.Context, id int64, username string) (domain.Route, error) {
	return c.member(ctx, "join route", id, "join", username)
}

// LeaveRoute removes username from the route's participant list and returns
// the updated route.
func (c *Client) LeaveRoute(ctx context.Context, id int64, username string) (domain.Route, error) {
	return c.member(ctx, "leave route", id, "leave", username)
}

func (c *Client) member(ctx context.Context, op string, id int64, action, username string) (domain.Route, error) {
	var updated domain.Route
	path := fmt.Sprintf("/routes/%d/%s", id, action)
	body := map[string]string{"username": username}
	if err := c.do(ctx, op, http.MethodPost, path, body, &updated); err != nil {
		return domain.Route{}, err
	}
	return updated, nil
}

// UpsertUser registers a display name with the backend, creating the record
// if it does not exist and echoing it back either way.
func (c *Client) UpsertUser(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	body := map[string]string{"username": username}
	if err := c.do(ctx, "upsert user", http.MethodPost, "/users", body, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// do runs one request/response cycle: encode body, send, classify the
// outcome, decode into out (skipped when out is nil, e.g. DELETE). Every
// failure is logged here with the operation name before being returned so
// the backend interaction has a single diagnostic chokepoint.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway.Client.do: encode %s: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("gateway.Client.do: build %s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Id", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend unreachable", "op", op, "error", err)
		return &Error{Op: op, Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.log.Warn("backend error status", "op", op, "status", resp.StatusCode)
		return statusError(op, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn("backend response malformed", "op", op, "error", err)
		return &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}
