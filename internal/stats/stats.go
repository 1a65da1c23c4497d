// Package stats is the main service's view of the statistics service: the
// wire types, an HTTP client, and asynchronous hit recorders.
package stats

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// EndpointHit is one recorded access to a URI.
type EndpointHit struct {
	App       string         `json:"app"`
	URI       string         `json:"uri"`
	IP        string         `json:"ip"`
	Timestamp model.DateTime `json:"timestamp"`
}

// ViewStats is the aggregated hit count of one URI.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// ViewsFetcher returns view counts for uris in [start, end]. With unique set,
// repeated hits from one IP count once.
type ViewsFetcher interface {
	GetViews(ctx context.Context, uris []string, start, end time.Time, unique bool) ([]ViewStats, error)
}

// HitRecorder records hits without blocking the caller. Failures are logged,
// never returned.
type HitRecorder interface {
	Record(ctx context.Context, hit EndpointHit)
}

// HitSender delivers a single hit synchronously.
type HitSender interface {
	SaveHit(ctx context.Context, hit EndpointHit) error
}

// ViewsByURI indexes the stats recorded by app by URI. Rows of other
// applications are skipped: unique counts of different apps cannot be added.
func ViewsByURI(stats []ViewStats, app string) map[string]int64 {
	m := make(map[string]int64, len(stats))
	for _, s := range stats {
		if s.App != app {
			continue
		}
		m[s.URI] = s.Hits
	}
	return m
}
