package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"homewatch/internal/models"
)

const (
	statesPath     = "/api/states"
	requestTimeout = 15 * time.Second
)

// Client reads device snapshots from a Home Assistant instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// stateDTO mirrors the hub's /api/states payload. last_changed stays a string
// so a malformed timestamp degrades to "just changed" instead of failing the
// whole snapshot.
type stateDTO struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
}

// FetchStates returns the current snapshot of all device states.
// Any non-200 response or transport error is an error; callers treat that as
// "no data this tick".
func (c *Client) FetchStates(ctx context.Context) ([]models.DeviceState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build states request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch states: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch states: unexpected status %d", resp.StatusCode)
	}

	var dtos []stateDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}

	out := make([]models.DeviceState, 0, len(dtos))
	for _, d := range dtos {
		if d.EntityID == "" {
			continue
		}
		out = append(out, models.DeviceState{
			ID:          d.EntityID,
			Status:      d.State,
			DisplayName: friendlyName(d.Attributes),
			LastChanged: parseChanged(d.LastChanged),
			Attributes:  d.Attributes,
		})
	}
	return out, nil
}

func friendlyName(attrs map[string]any) string {
	if s, ok := attrs["friendly_name"].(string); ok {
		return s
	}
	return ""
}

// parseChanged returns zero time on a malformed timestamp.
func parseChanged(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
