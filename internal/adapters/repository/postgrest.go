package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/fishery/internal/domain/model"
)

// errorBodyLimit caps how much of an error response is read.
const errorBodyLimit = 1 << 20

// PostgRESTStore reaches the managed database through its REST interface
// (Supabase's /rest/v1), authenticating with the service-role key.
type PostgRESTStore struct {
	endpoint string
	key      string
	client   *http.Client
}

// fishWrite is the insert/update payload. Id is left out so the database
// assigns it on insert and never rewrites it on update.
type fishWrite struct {
	Name   string `json:"Name"`
	Sell   int64  `json:"Sell"`
	Shadow string `json:"Shadow"`
	Where  string `json:"Where"`
}

// postgrestError is the error body PostgREST returns on failure.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewPostgRESTStore builds a store for the project at baseURL.
func NewPostgRESTStore(baseURL, serviceKey string, opts ...Option) (*PostgRESTStore, error) {
	if strings.TrimSpace(serviceKey) == "" {
		return nil, fmt.Errorf("%w: service role key is empty", ErrConfig)
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrConfig, baseURL)
	}

	o := applyOptions(opts)
	client := o.httpClient
	if client == nil {
		client = &http.Client{}
	}
	if o.timeout > 0 {
		c := *client
		c.Timeout = o.timeout
		client = &c
	}

	return &PostgRESTStore{
		endpoint: strings.TrimRight(u.String(), "/") + "/rest/v1/" + url.PathEscape(o.table),
		key:      serviceKey,
		client:   client,
	}, nil
}

// List selects the fish columns ordered by Name ascending.
func (s *PostgRESTStore) List(ctx context.Context) ([]model.FishRecord, error) {
	q := url.Values{}
	q.Set("select", strings.Join(model.Columns(), ","))
	q.Set("order", model.FieldName+".asc")

	resp, err := s.do(ctx, "list", http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := make([]model.FishRecord, 0, 64)
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newStoreError("list", "", fmt.Sprintf("decoding fish rows: %v", err), err)
	}
	return out, nil
}

// Create inserts one row.
func (s *PostgRESTStore) Create(ctx context.Context, rec model.FishRecord) error {
	body := []fishWrite{toWrite(rec)}
	return s.exec(ctx, "create", http.MethodPost, nil, body)
}

// Update patches the row whose Id equals rec.ID.
func (s *PostgRESTStore) Update(ctx context.Context, rec model.FishRecord) error {
	return s.exec(ctx, "update", http.MethodPatch, idFilter(rec.ID), toWrite(rec))
}

// Delete removes the row whose Id equals id.
func (s *PostgRESTStore) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete", http.MethodDelete, idFilter(id), nil)
}

// Ping reads at most one Id to prove the table is reachable.
func (s *PostgRESTStore) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", model.FieldID)
	q.Set("limit", "1")
	return s.exec(ctx, "ping", http.MethodGet, q, nil)
}

// Close releases idle connections.
func (s *PostgRESTStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func toWrite(rec model.FishRecord) fishWrite {
	return fishWrite{Name: rec.Name, Sell: rec.Sell, Shadow: rec.Shadow, Where: rec.Where}
}

func idFilter(id int64) url.Values {
	q := url.Values{}
	q.Set(model.FieldID, "eq."+strconv.FormatInt(id, 10))
	return q
}

// exec performs a call whose response body is not needed.
func (s *PostgRESTStore) exec(ctx context.Context, op, method string, q url.Values, body any) error {
	resp, err := s.do(ctx, op, method, q, body)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// do sends the request and turns transport failures and non-2xx answers
// into *StoreError. On success the caller owns resp.Body.
func (s *PostgRESTStore) do(ctx context.Context, op, method string, q url.Values, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, newStoreError(op, "", fmt.Sprintf("encoding request: %v", err), err)
		}
		rdr = bytes.NewReader(data)
	}

	target := s.endpoint
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, newStoreError(op, "", err.Error(), err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, newStoreError(op, "", err.Error(), err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(op, resp)
}

func decodeError(op string, resp *http.Response) *StoreError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	var pe postgrestError
	if err := json.Unmarshal(data, &pe); err == nil && pe.Message != "" {
		return newStoreError(op, pe.Code, pe.Message, fmt.Errorf("postgrest %s: status %d", op, resp.StatusCode))
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return newStoreError(op, strconv.Itoa(resp.StatusCode), msg, fmt.Errorf("postgrest %s: status %d", op, resp.StatusCode))
}
