package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

// Projector turns stored events into their API views, enriched with the
// confirmed request count and the unique view count of each event.
//
// Counts come from one aggregate query; views from one batched call to the
// statistics service covering every event URI, windowed from the earliest
// publication among the events until now. Hits for an event URI are only
// recorded once the event is published, so one shared window yields the same
// per-event numbers as per-event windows. The two lookups run concurrently.
// A failing statistics service degrades views to zero; a failing count query
// fails the projection.
type Projector struct {
	counts ConfirmedCounter
	views  stats.ViewsFetcher
	app    string
	log    *zap.Logger
	now    clock
}

// NewProjector constructs a Projector reporting the views recorded under app.
func NewProjector(counts ConfirmedCounter, views stats.ViewsFetcher, app string, log *zap.Logger) *Projector {
	return &Projector{counts: counts, views: views, app: app, log: log, now: time.Now}
}

type enrichment struct {
	confirmed map[string]int
	views     map[string]int64
}

func (e enrichment) short(ev model.Event) model.EventShort {
	return model.EventShort{
		ID:                ev.ID,
		Annotation:        ev.Annotation,
		Category:          ev.Category,
		EventDate:         model.NewDateTime(ev.EventDate),
		Initiator:         ev.Initiator,
		Paid:              ev.Paid,
		Title:             ev.Title,
		ConfirmedRequests: int64(e.confirmed[ev.ID]),
		Views:             e.views[ev.URI()],
	}
}

func (e enrichment) full(ev model.Event) model.EventFull {
	return model.EventFull{
		EventShort:        e.short(ev),
		CreatedOn:         model.NewDateTime(ev.CreatedOn),
		Description:       ev.Description,
		Location:          ev.Location,
		ParticipantLimit:  ev.ParticipantLimit,
		PublishedOn:       model.DateTimePtr(ev.PublishedOn),
		RequestModeration: ev.RequestModeration,
		State:             ev.State,
	}
}

func (p *Projector) enrich(ctx context.Context, events []model.Event) (enrichment, error) {
	out := enrichment{confirmed: map[string]int{}, views: map[string]int64{}}
	if len(events) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(events))
	uris := make([]string, 0, len(events))
	start := time.Unix(0, 0)
	var earliest *time.Time
	for _, ev := range events {
		ids = append(ids, ev.ID)
		uris = append(uris, ev.URI())
		if ev.PublishedOn != nil && (earliest == nil || ev.PublishedOn.Before(*earliest)) {
			earliest = ev.PublishedOn
		}
	}
	if earliest != nil {
		start = *earliest
	}
	end := p.now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := p.counts.CountConfirmed(gctx, ids)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		out.confirmed = counts
		return nil
	})
	g.Go(func() error {
		viewStats, err := p.views.GetViews(gctx, uris, start, end, true)
		if err != nil {
			p.log.Warn("views unavailable, reporting zero", zap.Int("events", len(events)), zap.Error(err))
			return nil
		}
		out.views = stats.ViewsByURI(viewStats, p.app)
		return nil
	})
	if err := g.Wait(); err != nil {
		return enrichment{}, err
	}
	return out, nil
}

// Short projects events for listings.
func (p *Projector) Short(ctx context.Context, events []model.Event) ([]model.EventShort, error) {
	e, err := p.enrich(ctx, events)
	if err != nil {
		return nil, err
	}
	out := make([]model.EventShort, 0, len(events))
	for _, ev := range events {
		out = append(out, e.short(ev))
	}
	return out, nil
}

// Full projects events with every detail.
func (p *Projector) Full(ctx context.Context, events []model.Event) ([]model.EventFull, error) {
	e, err := p.enrich(ctx, events)
	if err != nil {
		return nil, err
	}
	out := make([]model.EventFull, 0, len(events))
	for _, ev := range events {
		out = append(out, e.full(ev))
	}
	return out, nil
}

// One projects a single event with every detail.
func (p *Projector) One(ctx context.Context, ev model.Event) (model.EventFull, error) {
	full, err := p.Full(ctx, []model.Event{ev})
	if err != nil {
		return model.EventFull{}, err
	}
	return full[0], nil
}
