package model

import (
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
)

// RequestStatus is the state of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Admission errors.
var (
	ErrEventNotPublished  = apperror.Conflict("cannot request participation in an unpublished event")
	ErrInitiatorRequest   = apperror.Conflict("the initiator cannot request participation in their own event")
	ErrDuplicateRequest   = apperror.Conflict("participation request already exists")
	ErrLimitReached       = apperror.Conflict("the participant limit has been reached")
	ErrNotPending         = apperror.Conflict("can only update pending requests")
	ErrInvalidTargetState = apperror.BadRequest("status must be CONFIRMED or REJECTED")
	ErrNotRequestOwner    = apperror.Forbidden("only the requester may cancel this request")
	ErrNotEventInitiator  = apperror.Forbidden("only the initiator may manage participation requests")
)

// ParticipationRequest is a user's application to attend an event.
// INVARIANT: at most one request exists per (RequesterID, EventID).
type ParticipationRequest struct {
	ID          string
	EventID     string
	RequesterID string
	Status      RequestStatus
	Created     time.Time
}

// Cancel withdraws the request. It applies from any status.
func (r *ParticipationRequest) Cancel() {
	r.Status = RequestCanceled
}

// HasCapacity reports whether one more request may be confirmed.
// A zero participant limit means unlimited.
func (e Event) HasCapacity(confirmed int) bool {
	return e.ParticipantLimit == 0 || confirmed < e.ParticipantLimit
}

// Admit evaluates the creation rules for a new request against e and returns
// the status the request is created with. confirmed is e's current confirmed
// count; duplicate reports whether the requester already has a request.
func (e Event) Admit(requesterID string, confirmed int, duplicate bool) (RequestStatus, error) {
	if e.State != StatePublished {
		return "", ErrEventNotPublished
	}
	if e.Initiator.ID == requesterID {
		return "", ErrInitiatorRequest
	}
	if duplicate {
		return "", ErrDuplicateRequest
	}
	if !e.HasCapacity(confirmed) {
		return "", ErrLimitReached
	}
	if e.ParticipantLimit == 0 || !e.RequestModeration {
		return RequestConfirmed, nil
	}
	return RequestPending, nil
}

// StatusUpdate partitions the requests touched by a bulk status update.
type StatusUpdate struct {
	Confirmed []ParticipationRequest
	Rejected  []ParticipationRequest
}

// PartitionStatusUpdate decides the outcome of a bulk status update without
// touching storage. requests are processed in order. Every request must be
// PENDING and, for a limited event, confirmed must be below limit; otherwise
// nothing is changed. When confirming, requests beyond the limit are rejected.
func PartitionStatusUpdate(confirmed, limit int, requests []ParticipationRequest, target RequestStatus) (StatusUpdate, error) {
	if target != RequestConfirmed && target != RequestRejected {
		return StatusUpdate{}, ErrInvalidTargetState
	}
	for _, r := range requests {
		if r.Status != RequestPending {
			return StatusUpdate{}, ErrNotPending
		}
	}
	if limit > 0 && confirmed >= limit {
		return StatusUpdate{}, ErrLimitReached
	}

	result := StatusUpdate{
		Confirmed: []ParticipationRequest{},
		Rejected:  []ParticipationRequest{},
	}
	for _, r := range requests {
		if target == RequestConfirmed && (limit == 0 || confirmed < limit) {
			r.Status = RequestConfirmed
			result.Confirmed = append(result.Confirmed, r)
			confirmed++
			continue
		}
		r.Status = RequestRejected
		result.Rejected = append(result.Rejected, r)
	}
	return result, nil
}

// StatusUpdateRequest is the payload of a bulk status update.
type StatusUpdateRequest struct {
	RequestIDs []string      `json:"requestIds"`
	Status     RequestStatus `json:"status"`
}

// Validate checks the payload shape.
func (r StatusUpdateRequest) Validate() error {
	if len(r.RequestIDs) == 0 {
		return apperror.BadRequest("requestIds must not be empty")
	}
	if r.Status != RequestConfirmed && r.Status != RequestRejected {
		return ErrInvalidTargetState
	}
	seen := make(map[string]struct{}, len(r.RequestIDs))
	for _, id := range r.RequestIDs {
		if _, dup := seen[id]; dup {
			return apperror.BadRequest("requestIds must not repeat: %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
