// Package remote talks to the todo REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

const collectionPath = "api/todos"

// Client is an HTTP client for the todo collection at BaseURL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	log     *slog.Logger
}

// Option tweaks a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option { return func(c *Client) { c.token = strings.TrimSpace(token) } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.log = l } }

// New parses base (e.g. "http://localhost:8080") and returns a Client.
func New(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url: missing host")
	}
	c := &Client{baseURL: u, http: http.DefaultClient, log: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// List returns the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL.JoinPath(collectionPath), "", nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts a new todo. The created record in the response is discarded.
func (c *Client) Create(ctx context.Context, in model.Input) error {
	return c.do(ctx, "create", http.MethodPost, c.baseURL.JoinPath(collectionPath), "", in, nil)
}

// Replace overwrites both mutable fields of todo id.
func (c *Client) Replace(ctx context.Context, id model.ID, in model.Input) error {
	u, err := c.itemURL("replace", id)
	if err != nil {
		return err
	}
	return c.do(ctx, "replace", http.MethodPut, u, id, in, nil)
}

func (c *Client) Delete(ctx context.Context, id model.ID) error {
	u, err := c.itemURL("delete", id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete", http.MethodDelete, u, id, nil, nil)
}

// itemURL refuses ids that JoinPath would collapse onto another endpoint.
func (c *Client) itemURL(op string, id model.ID) (*url.URL, error) {
	switch id {
	case "", ".", "..":
		return nil, fmt.Errorf("%s: %w %q", op, ErrInvalidID, id)
	}
	return c.baseURL.JoinPath(collectionPath, url.PathEscape(id.String())), nil
}

func (c *Client) do(ctx context.Context, op, method string, u *url.URL, id model.ID, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("remote call", "op", op, "method", method, "url", u.String(), "status", resp.StatusCode, "request_id", reqID)

	if resp.StatusCode == http.StatusNotFound && id != "" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &NotFoundError{Op: op, ID: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 {
			msg = []byte(http.StatusText(resp.StatusCode))
		}
		return &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
