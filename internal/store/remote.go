package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/scbrown/cheeky/internal/model"
)

// RemoteStore implements Store by forwarding requests over HTTP to a
// `cheeky serve` instance, so several machines can share one history.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a RemoteStore pointing at the given base URL (e.g., "http://localhost:7274").
func NewRemote(baseURL string) *RemoteStore {
	return &RemoteStore{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (r *RemoteStore) Record(ctx context.Context, e model.HistoryEntry) error {
	return r.do(ctx, http.MethodPost, "/api/v1/history", nil, e, nil)
}

func (r *RemoteStore) List(ctx context.Context, opts ListOpts) ([]model.HistoryEntry, error) {
	q := url.Values{}
	if !opts.Since.IsZero() {
		q.Set("since", opts.Since.UTC().Format(time.RFC3339))
	}
	if opts.Command != "" {
		q.Set("command", opts.Command)
	}
	if opts.Source != "" {
		q.Set("source", opts.Source)
	}
	if opts.MissesOnly {
		q.Set("misses", "true")
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	var entries []model.HistoryEntry
	if err := r.do(ctx, http.MethodGet, "/api/v1/history", q, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *RemoteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := r.do(ctx, http.MethodGet, "/api/v1/stats", nil, nil, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *RemoteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	q := url.Values{}
	q.Set("before", before.UTC().Format(time.RFC3339Nano))
	var resp struct {
		Deleted int `json:"deleted"`
	}
	if err := r.do(ctx, http.MethodDelete, "/api/v1/history", q, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// Close is a no-op for the remote store.
func (r *RemoteStore) Close() error {
	return nil
}

// do sends a request with an optional JSON body and decodes the JSON
// response into dst when dst is non-nil.
func (r *RemoteStore) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return remoteError(resp)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// remoteError reads an error response from the server and returns it as an error.
func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("remote store (%d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("remote store (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
