package model_test

import (
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

func pending(ids ...string) []model.ParticipationRequest {
	out := make([]model.ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.ParticipationRequest{ID: id, EventID: "ev-1", Status: model.RequestPending})
	}
	return out
}

func ids(rs []model.ParticipationRequest) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAdmit(t *testing.T) {
	published := eventIn(model.StatePublished)

	tests := []struct {
		name       string
		mutate     func(*model.Event)
		requester  string
		confirmed  int
		duplicate  bool
		wantStatus model.RequestStatus
		wantErr    error
	}{
		{"unpublished", func(e *model.Event) { e.State = model.StatePending; e.PublishedOn = nil }, "u1", 0, false, "", model.ErrEventNotPublished},
		{"initiator", nil, "owner", 0, false, "", model.ErrInitiatorRequest},
		{"duplicate", nil, "u1", 0, true, "", model.ErrDuplicateRequest},
		{"full", func(e *model.Event) { e.ParticipantLimit = 2 }, "u1", 2, false, "", model.ErrLimitReached},
		{"moderated", func(e *model.Event) { e.RequestModeration = true }, "u1", 0, false, model.RequestPending, nil},
		{"not moderated", func(e *model.Event) { e.RequestModeration = false }, "u1", 0, false, model.RequestConfirmed, nil},
		{"unlimited", func(e *model.Event) { e.ParticipantLimit = 0; e.RequestModeration = true }, "u1", 500, false, model.RequestConfirmed, nil},
		{"duplicate checked before limit", func(e *model.Event) { e.ParticipantLimit = 1 }, "u1", 1, true, "", model.ErrDuplicateRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := published
			if tt.mutate != nil {
				tt.mutate(&ev)
			}
			got, err := ev.Admit(tt.requester, tt.confirmed, tt.duplicate)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Admit() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantStatus {
				t.Errorf("Admit() = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestPartitionStatusUpdate(t *testing.T) {
	tests := []struct {
		name          string
		confirmed     int
		limit         int
		requests      []model.ParticipationRequest
		target        model.RequestStatus
		wantConfirmed []string
		wantRejected  []string
		wantErr       error
	}{
		{
			name: "overflow rejected in batch order", confirmed: 0, limit: 2,
			requests: pending("A", "B", "C"), target: model.RequestConfirmed,
			wantConfirmed: []string{"A", "B"}, wantRejected: []string{"C"},
		},
		{
			name: "unlimited confirms all", confirmed: 40, limit: 0,
			requests: pending("A", "B", "C"), target: model.RequestConfirmed,
			wantConfirmed: []string{"A", "B", "C"}, wantRejected: []string{},
		},
		{
			name: "reject all", confirmed: 0, limit: 1,
			requests: pending("A", "B"), target: model.RequestRejected,
			wantConfirmed: []string{}, wantRejected: []string{"A", "B"},
		},
		{
			name: "existing confirmations count", confirmed: 1, limit: 2,
			requests: pending("A", "B"), target: model.RequestConfirmed,
			wantConfirmed: []string{"A"}, wantRejected: []string{"B"},
		},
		{
			name: "limit already reached", confirmed: 1, limit: 1,
			requests: pending("B"), target: model.RequestConfirmed,
			wantErr: model.ErrLimitReached,
		},
		{
			name: "non pending aborts whole batch", confirmed: 0, limit: 5,
			requests: append(pending("A"), model.ParticipationRequest{ID: "B", Status: model.RequestConfirmed}),
			target:   model.RequestConfirmed, wantErr: model.ErrNotPending,
		},
		{
			name: "invalid target", confirmed: 0, limit: 0,
			requests: pending("A"), target: model.RequestCanceled,
			wantErr: model.ErrInvalidTargetState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.PartitionStatusUpdate(tt.confirmed, tt.limit, tt.requests, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !equalIDs(ids(got.Confirmed), tt.wantConfirmed) {
				t.Errorf("confirmed = %v, want %v", ids(got.Confirmed), tt.wantConfirmed)
			}
			if !equalIDs(ids(got.Rejected), tt.wantRejected) {
				t.Errorf("rejected = %v, want %v", ids(got.Rejected), tt.wantRejected)
			}
			for _, r := range got.Confirmed {
				if r.Status != model.RequestConfirmed {
					t.Errorf("request %s status = %s", r.ID, r.Status)
				}
			}
			for _, r := range got.Rejected {
				if r.Status != model.RequestRejected {
					t.Errorf("request %s status = %s", r.ID, r.Status)
				}
			}
		})
	}
}

func TestPartitionStatusUpdate_DoesNotMutateInput(t *testing.T) {
	in := pending("A", "B")
	if _, err := model.PartitionStatusUpdate(0, 1, in, model.RequestConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range in {
		if r.Status != model.RequestPending {
			t.Errorf("input request %s mutated to %s", r.ID, r.Status)
		}
	}
}

func TestCancel_FromAnyStatus(t *testing.T) {
	for _, s := range []model.RequestStatus{model.RequestPending, model.RequestConfirmed, model.RequestRejected, model.RequestCanceled} {
		r := model.ParticipationRequest{Status: s}
		r.Cancel()
		if r.Status != model.RequestCanceled {
			t.Errorf("Cancel() from %s = %s", s, r.Status)
		}
	}
}

func TestStatusUpdateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     model.StatusUpdateRequest
		wantErr bool
	}{
		{"ok", model.StatusUpdateRequest{RequestIDs: []string{"a"}, Status: model.RequestConfirmed}, false},
		{"empty ids", model.StatusUpdateRequest{Status: model.RequestRejected}, true},
		{"bad status", model.StatusUpdateRequest{RequestIDs: []string{"a"}, Status: model.RequestPending}, true},
		{"repeated id", model.StatusUpdateRequest{RequestIDs: []string{"a", "a"}, Status: model.RequestConfirmed}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
