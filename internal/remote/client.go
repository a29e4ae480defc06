package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vytor/fretlog/internal/logger"
)

// Row is one remote record, keyed by column name.
type Row map[string]any

// Store is the remote persistence surface the sync layer talks to.
// All operations are idempotent: an Upsert can be retried, a Delete of
// a missing row succeeds.
type Store interface {
	Upsert(ctx context.Context, table, id string, row Row) error
	Delete(ctx context.Context, table, id string) error
	SelectAll(ctx context.Context, table string) ([]Row, error)
}

// Ensure Client implements the interface
var _ Store = (*Client)(nil)

// Client talks to the hosted backend's REST surface, scoped to one
// user. Every request carries the API key as a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userID     string
	log        *logger.Logger
}

func New(baseURL, apiKey, userID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		userID:     userID,
		log:        logger.Default().WithPrefix("remote").WithField("user", userID),
	}
}

func (c *Client) Upsert(ctx context.Context, table, id string, row Row) error {
	log := logger.FromContext(ctx).WithPrefix("remote")

	body, err := json.Marshal(row)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/%s/%s", c.baseURL, table, url.PathEscape(id))
	log.Debug("upserting %s/%s", table, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError("upsert", table, resp)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	log := logger.FromContext(ctx).WithPrefix("remote")

	endpoint := fmt.Sprintf("%s/api/%s/%s", c.baseURL, table, url.PathEscape(id))
	log.Debug("deleting %s/%s", table, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// A row deleted twice is still deleted.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError("delete", table, resp)
	}
	return nil
}

func (c *Client) SelectAll(ctx context.Context, table string) ([]Row, error) {
	log := logger.FromContext(ctx).WithPrefix("remote")

	endpoint := fmt.Sprintf("%s/api/%s", c.baseURL, table)
	log.Debug("selecting all rows from %s", table)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("select", table, resp)
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		log.Error("failed to decode %s response: %v", table, err)
		return nil, err
	}

	log.Debug("fetched %d rows from %s in %v", len(rows), table, time.Since(start))
	return rows, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed: %s %s: %v", req.Method, req.URL.Path, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) statusError(op, table string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.log.Error("%s %s failed: status=%d, body=%s", op, table, resp.StatusCode, string(body))
	return fmt.Errorf("remote %s %s: status %d: %s", op, table, resp.StatusCode, string(body))
}
