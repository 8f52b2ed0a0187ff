// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"stylescope/internal/explore"
	"stylescope/internal/stream"
	"stylescope/internal/tree"
)

// Session is the server's session resource, as consumed here.
type Session struct {
	ID                string                `json:"id"`
	Name              string                `json:"name,omitempty"`
	Status            explore.SessionStatus `json:"status"`
	ReferenceImageURL string                `json:"reference_image_url,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// TreeResponse is the full node list for a session plus the snapshot the
// session currently points at.
type TreeResponse struct {
	AllNodes          []tree.ExplorationNode `json:"all_nodes"`
	CurrentSnapshotID string                 `json:"current_snapshot_id"`
}

// Client calls the exploration server's request operations. The exploration
// run itself has no client-side deadline; it is bounded only by explicit
// cancellation, so the long-running start call uses a client without a
// timeout while everything else gets 30 seconds.
type Client struct {
	baseURL    string
	httpClient *http.Client
	longClient *http.Client
}

// NewClient creates a client for the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		longClient: &http.Client{},
	}
}

// StartExploration triggers a run generating count variants and blocks until
// the server returns the authoritative result.
func (c *Client) StartExploration(ctx context.Context, sessionID string, count int) (*stream.Result, error) {
	body := map[string]int{"count": count}
	var result stream.Result
	url := fmt.Sprintf("%s/api/sessions/%s/explore", c.baseURL, sessionID)
	if err := c.do(ctx, c.longClient, http.MethodPost, url, body, &result); err != nil {
		return nil, err
	}
	if result.TestResults == nil {
		result.TestResults = make(map[string][]stream.TestResult)
	}
	return &result, nil
}

// StopExploration requests cancellation of the in-flight run. The server
// acknowledges the request; it does not promise the channel stops emitting
// immediately.
func (c *Client) StopExploration(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s/api/sessions/%s/explore/stop", c.baseURL, sessionID)
	return c.do(ctx, c.httpClient, http.MethodPost, url, nil, nil)
}

// GetSession fetches the session resource, including its status literal.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	url := fmt.Sprintf("%s/api/sessions/%s", c.baseURL, sessionID)
	if err := c.do(ctx, c.httpClient, http.MethodGet, url, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetExplorationTree fetches the flat node list and current snapshot id.
func (c *Client) GetExplorationTree(ctx context.Context, sessionID string) (*TreeResponse, error) {
	var resp TreeResponse
	url := fmt.Sprintf("%s/api/sessions/%s/tree", c.baseURL, sessionID)
	if err := c.do(ctx, c.httpClient, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ToggleFavorite flips the favorite flag on a snapshot and returns the
// updated node.
func (c *Client) ToggleFavorite(ctx context.Context, snapshotID string) (*tree.ExplorationNode, error) {
	var node tree.ExplorationNode
	url := fmt.Sprintf("%s/api/snapshots/%s/favorite", c.baseURL, snapshotID)
	if err := c.do(ctx, c.httpClient, http.MethodPost, url, nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// SelectSnapshot makes the given snapshot the session's current one.
func (c *Client) SelectSnapshot(ctx context.Context, sessionID, snapshotID string) error {
	body := map[string]string{"snapshot_id": snapshotID}
	url := fmt.Sprintf("%s/api/sessions/%s/current", c.baseURL, sessionID)
	return c.do(ctx, c.httpClient, http.MethodPost, url, body, nil)
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, client *http.Client, method, url string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
