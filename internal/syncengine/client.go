package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/md-faizanahmad/quick-tracker/internal/models"
)

// ErrRejected means the remote refused the batch as malformed (4xx).
// Resending the identical batch cannot help, so the engine does not
// schedule an automatic retry for it.
var ErrRejected = errors.New("batch rejected by remote")

// Client ships record batches to the remote reconciliation endpoint.
// The contract is all-or-nothing per batch: any non-2xx response or
// transport failure means the whole batch stays pending.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type syncResponse struct {
	Success     bool `json:"success"`
	SyncedCount int  `json:"syncedCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PushBatch sends the whole pending set as one JSON array and returns the
// count of records the remote accepted.
func (c *Client) PushBatch(ctx context.Context, batch []models.ExpenseRecord) (int, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return 0, fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sync request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return 0, fmt.Errorf("%w: %d %s", ErrRejected, resp.StatusCode, er.Error)
		}
		return 0, fmt.Errorf("sync failed: %d %s", resp.StatusCode, er.Error)
	}

	var sr syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode sync response: %w", err)
	}
	return sr.SyncedCount, nil
}
