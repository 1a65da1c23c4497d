package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// RequestService manages participation requests.
type RequestService struct {
	requests RequestStore
	events   EventStore
	users    UserStore
	log      *zap.Logger
	now      clock
	newID    idGen
}

// NewRequestService constructs a RequestService.
func NewRequestService(requests RequestStore, events EventStore, users UserStore, log *zap.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		events:   events,
		users:    users,
		log:      log,
		now:      time.Now,
		newID:    newID,
	}
}

// Create applies userID to eventID. The admission rules run while the event
// row is locked, so the confirmed count read by them is authoritative.
func (s *RequestService) Create(ctx context.Context, userID, eventID string) (model.ParticipationRequest, error) {
	if eventID == "" {
		return model.ParticipationRequest{}, apperror.BadRequest("eventId is required")
	}
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return model.ParticipationRequest{}, err
	}

	pr := model.ParticipationRequest{
		ID:          s.newID(),
		EventID:     eventID,
		RequesterID: userID,
		Created:     s.now(),
	}
	created, err := s.requests.Create(ctx, pr, func(ev model.Event, confirmed int, duplicate bool) (model.RequestStatus, error) {
		return ev.Admit(userID, confirmed, duplicate)
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return model.ParticipationRequest{}, model.ErrDuplicateRequest
	case err != nil:
		return model.ParticipationRequest{}, translate(err, eventRef(eventID))
	}
	s.log.Info("participation requested",
		zap.String("request_id", created.ID),
		zap.String("event_id", eventID),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

// ListByRequester returns the user's own requests.
func (s *RequestService) ListByRequester(ctx context.Context, userID string) ([]model.ParticipationRequest, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByRequester(ctx, userID)
	if err != nil {
		return nil, translate(err, "requests of "+userRef(userID))
	}
	return requests, nil
}

// Cancel withdraws the user's own request, whatever its status.
func (s *RequestService) Cancel(ctx context.Context, userID, requestID string) (model.ParticipationRequest, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return model.ParticipationRequest{}, err
	}
	pr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return model.ParticipationRequest{}, translate(err, "participation request with id="+requestID)
	}
	if pr.RequesterID != userID {
		return model.ParticipationRequest{}, model.ErrNotRequestOwner
	}
	pr.Cancel()
	if err := s.requests.SetStatus(ctx, pr.ID, pr.Status); err != nil {
		return model.ParticipationRequest{}, translate(err, "participation request with id="+requestID)
	}
	return pr, nil
}

// ListForEvent returns the requests to an event owned by userID.
func (s *RequestService) ListForEvent(ctx context.Context, userID, eventID string) ([]model.ParticipationRequest, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, translate(err, "requests of "+eventRef(eventID))
	}
	return requests, nil
}

// UpdateStatuses confirms or rejects pending requests to an event owned by
// userID. Either every listed request changes or none does.
func (s *RequestService) UpdateStatuses(ctx context.Context, userID, eventID string, req model.StatusUpdateRequest) (model.StatusUpdate, error) {
	if err := req.Validate(); err != nil {
		return model.StatusUpdate{}, err
	}
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return model.StatusUpdate{}, err
	}

	result, err := s.requests.UpdateStatuses(ctx, eventID, req.RequestIDs,
		func(ev model.Event, confirmed int, requests []model.ParticipationRequest) (model.StatusUpdate, error) {
			return model.PartitionStatusUpdate(confirmed, ev.ParticipantLimit, requests, req.Status)
		})
	if err != nil {
		return model.StatusUpdate{}, translate(err, "participation request of "+eventRef(eventID))
	}
	s.log.Info("request statuses updated",
		zap.String("event_id", eventID),
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

func (s *RequestService) ownedEvent(ctx context.Context, userID, eventID string) (model.Event, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return model.Event{}, err
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return model.Event{}, translate(err, eventRef(eventID))
	}
	if ev.Initiator.ID != userID {
		return model.Event{}, model.ErrNotEventInitiator
	}
	return ev, nil
}
