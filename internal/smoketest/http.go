package smoketest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// HTTPClient calls the fish endpoint of a running service.
type HTTPClient struct {
	client   *http.Client
	endpoint string
	base     string
	requests atomic.Int64
}

// Response is a decoded reply: status code and raw body.
type Response struct {
	Status int
	Body   []byte
}

// NewHTTPClient creates a client for the endpoint at baseURL+path.
func NewHTTPClient(baseURL, path string, timeout time.Duration) *HTTPClient {
	base := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: base + "/" + strings.TrimLeft(path, "/"),
		base:     base,
	}
}

// Requests returns how many requests were sent.
func (c *HTTPClient) Requests() int64 {
	return c.requests.Load()
}

// Health calls GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) (*Response, error) {
	return c.send(ctx, http.MethodGet, c.base+"/healthz", nil)
}

// List fetches every fish.
func (c *HTTPClient) List(ctx context.Context) ([]Fish, error) {
	resp, err := c.Do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, unexpected("list", resp)
	}
	var out []Fish
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decoding list response: %w", err)
	}
	return out, nil
}

// Create posts fish and expects the added message.
func (c *HTTPClient) Create(ctx context.Context, f Fish) error {
	body := map[string]any{"Name": f.Name, "Sell": f.Sell, "Shadow": f.Shadow, "Where": f.Where}
	return c.expectMessage(ctx, "create", http.MethodPost, body, msgAdded)
}

// Update puts fish and expects the updated message.
func (c *HTTPClient) Update(ctx context.Context, f Fish) error {
	return c.expectMessage(ctx, "update", http.MethodPut, f, msgUpdated)
}

// Delete removes the fish with id and expects the deleted message.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.expectMessage(ctx, "delete", http.MethodDelete, map[string]int64{"Id": id}, msgDeleted)
}

// Do sends method to the fish endpoint with body encoded as JSON.
func (c *HTTPClient) Do(ctx context.Context, method string, body any) (*Response, error) {
	return c.send(ctx, method, c.endpoint, body)
}

func (c *HTTPClient) expectMessage(ctx context.Context, op, method string, body any, want string) error {
	resp, err := c.Do(ctx, method, body)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return unexpected(op, resp)
	}
	var msg MessageResponse
	if err := json.Unmarshal(resp.Body, &msg); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	if !msg.Success || msg.Message != want {
		return fmt.Errorf("%s: got message %q, want %q", op, msg.Message, want)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, url string, body any) (*Response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return nil, fmt.Errorf("%s %s: content type %q is not JSON", method, url, ct)
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// unexpected describes a reply whose status the caller did not expect.
func unexpected(op string, resp *Response) error {
	var e ErrorResponse
	if err := json.Unmarshal(resp.Body, &e); err == nil && e.Error != "" {
		return fmt.Errorf("%s: status %d: %s", op, resp.Status, e.Error)
	}
	body := string(resp.Body)
	if len(body) > maxResponseLogSize {
		body = body[:maxResponseLogSize]
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.Status, body)
}
