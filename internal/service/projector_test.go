package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

func TestProjector_EnrichesCountsAndViews(t *testing.T) {
	f := newFixture()
	a := f.addEvent("e1", "u1", model.StatePublished, 5, 3)
	b := f.addEvent("e2", "u1", model.StatePublished, 0, 4)
	earlier := now.Add(-72 * time.Hour)
	b.PublishedOn = &earlier
	f.addRequest("r1", "e1", "u2", model.RequestConfirmed)
	f.addRequest("r2", "e1", "u3", model.RequestConfirmed)
	f.addRequest("r3", "e1", "u4", model.RequestPending)
	f.views.hits["/events/e1"] = 7

	got, err := f.projector.Short(context.Background(), []model.Event{a, b})
	if err != nil {
		t.Fatalf("Short() error = %v", err)
	}
	if got[0].ConfirmedRequests != 2 || got[0].Views != 7 {
		t.Errorf("e1 = %+v, want 2 confirmed, 7 views", got[0])
	}
	if got[1].ConfirmedRequests != 0 || got[1].Views != 0 {
		t.Errorf("e2 = %+v, want zero counts", got[1])
	}
	if f.views.calls != 1 {
		t.Errorf("views fetched %d times, want one batched call", f.views.calls)
	}
	if !f.views.start.Equal(earlier) {
		t.Errorf("window start = %v, want earliest publication %v", f.views.start, earlier)
	}
}

func TestProjector_IgnoresViewsOfOtherApps(t *testing.T) {
	f := newFixture()
	ev := f.addEvent("e1", "u1", model.StatePublished, 0, 3)
	f.views.hits["/events/e1"] = 4
	f.views.other = map[string]int64{"/events/e1": 9, "/events/e2": 3}

	got, err := f.projector.One(context.Background(), ev)
	if err != nil {
		t.Fatalf("One() error = %v", err)
	}
	if got.Views != 4 {
		t.Errorf("Views = %d, want 4", got.Views)
	}
}

func TestProjector_UnpublishedWindowStartsAtEpoch(t *testing.T) {
	f := newFixture()
	ev := f.addEvent("e1", "u1", model.StatePending, 0, 3)

	if _, err := f.projector.One(context.Background(), ev); err != nil {
		t.Fatalf("One() error = %v", err)
	}
	if !f.views.start.Equal(time.Unix(0, 0)) {
		t.Errorf("window start = %v, want epoch", f.views.start)
	}
}

func TestProjector_ViewsFailureDegradesToZero(t *testing.T) {
	f := newFixture()
	ev := f.addEvent("e1", "u1", model.StatePublished, 0, 3)
	f.addRequest("r1", "e1", "u2", model.RequestConfirmed)
	f.views.err = errors.New("stats down")

	core, logs := observer.New(zap.WarnLevel)
	p := NewProjector(memRequests{f.db}, f.views, "ewm-main-service", zap.New(core))

	got, err := p.One(context.Background(), ev)
	if err != nil {
		t.Fatalf("One() error = %v", err)
	}
	if got.Views != 0 || got.ConfirmedRequests != 1 {
		t.Errorf("One() = views %d confirmed %d, want 0 and 1", got.Views, got.ConfirmedRequests)
	}
	if logs.FilterMessage("views unavailable, reporting zero").Len() != 1 {
		t.Errorf("expected one warning, got %v", logs.All())
	}
}

func TestProjector_CountFailurePropagates(t *testing.T) {
	f := newFixture()
	ev := f.addEvent("e1", "u1", model.StatePublished, 0, 3)
	f.db.countErr = errBoom

	if _, err := f.projector.One(context.Background(), ev); !errors.Is(err, errBoom) {
		t.Errorf("One() error = %v, want %v", err, errBoom)
	}
}

func TestProjector_EmptyInputSkipsLookups(t *testing.T) {
	f := newFixture()
	got, err := f.projector.Short(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("Short(nil) = %v, %v", got, err)
	}
	if f.views.calls != 0 {
		t.Errorf("views fetched %d times for no events", f.views.calls)
	}
}
