package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/civicsignal/incident-fusion/internal/domain"
)

// Client fetches raw report batches from the upstream feed endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client for the given endpoint.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch performs one GET against the feed and decodes the batch. The feed's
// response shape is not stable across sources, so an array, a single object,
// a {"data": [...]} envelope, and a JSON null are all accepted.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	reports, err := decodeBatch(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched feed batch", "count", len(reports))
	return reports, nil
}

func decodeBatch(body []byte) ([]domain.RawReport, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var reports []domain.RawReport
		if err := json.Unmarshal(trimmed, &reports); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return compact(reports), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if data, ok := obj["data"]; ok {
			return decodeBatch(data)
		}
		var report domain.RawReport
		if err := json.Unmarshal(trimmed, &report); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return []domain.RawReport{report}, nil
	default:
		return nil, fmt.Errorf("decode response: unexpected payload %q", snippet(trimmed))
	}
}

// compact drops null entries, which some feeds emit for deleted items.
func compact(reports []domain.RawReport) []domain.RawReport {
	out := reports[:0]
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func snippet(b []byte) string {
	const max = 64
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
