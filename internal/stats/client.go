package stats

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
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const (
	// MaxURIsPerCall bounds the uris query parameter of one /stats call.
	MaxURIsPerCall   = 50
	maxParallelCalls = 4
)

// Client talks to the statistics service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. timeout bounds every
// call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SaveHit posts hit to /hit.
func (c *Client) SaveHit(ctx context.Context, hit EndpointHit) error {
	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post hit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post hit: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// GetViews fetches view stats for uris. Large URI sets are split into chunks
// of MaxURIsPerCall fetched concurrently; any failed chunk fails the call.
func (c *Client) GetViews(ctx context.Context, uris []string, start, end time.Time, unique bool) ([]ViewStats, error) {
	if len(uris) == 0 {
		return []ViewStats{}, nil
	}

	var (
		mu  sync.Mutex
		out = []ViewStats{}
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCalls)
	for from := 0; from < len(uris); from += MaxURIsPerCall {
		chunk := uris[from:min(from+MaxURIsPerCall, len(uris))]
		g.Go(func() error {
			stats, err := c.getStats(ctx, chunk, start, end, unique)
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, stats...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getStats(ctx context.Context, uris []string, start, end time.Time, unique bool) ([]ViewStats, error) {
	q := url.Values{}
	q.Set("start", model.FormatDateTime(start))
	q.Set("end", model.FormatDateTime(end))
	q.Set("unique", strconv.FormatBool(unique))
	for _, u := range uris {
		q.Add("uris", u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get stats: unexpected status %d", resp.StatusCode)
	}
	var stats []ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}
