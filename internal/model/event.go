package model

import (
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
)

// EventState is the publication state of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

// Valid reports whether s is a known state.
func (s EventState) Valid() bool {
	switch s {
	case StatePending, StatePublished, StateCanceled:
		return true
	}
	return false
}

// StateAction is a requested state transition carried by an event patch.
type StateAction string

const (
	ActionPublish      StateAction = "PUBLISH_EVENT"
	ActionReject       StateAction = "REJECT_EVENT"
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
)

// Edit horizons: an event may not be edited when it starts sooner than this.
const (
	AdminEditHorizon     = time.Hour
	InitiatorEditHorizon = 2 * time.Hour
)

// Lifecycle errors.
var (
	ErrAlreadyPublished       = apperror.Conflict("event is already published")
	ErrPublishRejected        = apperror.Conflict("cannot publish a rejected event")
	ErrRejectPublished        = apperror.Conflict("cannot reject a published event")
	ErrEditPublished          = apperror.Conflict("cannot edit a published event")
	ErrTooSoon                = apperror.Conflict("event starts too soon to edit")
	ErrLimitBelowConfirmed    = apperror.Conflict("participant limit cannot be lower than the number of confirmed requests")
	ErrNotInitiator           = apperror.Forbidden("only the initiator may modify this event")
	ErrUnknownAdminAction     = apperror.BadRequest("stateAction must be PUBLISH_EVENT or REJECT_EVENT")
	ErrUnknownInitiatorAction = apperror.BadRequest("stateAction must be SEND_TO_REVIEW or CANCEL_REVIEW")
)

// Event is a user-created activity others can request to join.
// INVARIANT: PublishedOn != nil iff State == StatePublished.
type Event struct {
	ID                string
	Title             string
	Annotation        string
	Description       string
	Category          Category
	Initiator         UserShort
	Location          Location
	EventDate         time.Time
	State             EventState
	Paid              bool
	CreatedOn         time.Time
	PublishedOn       *time.Time
	ParticipantLimit  int
	RequestModeration bool
}

// URI is the canonical path under which views of the event are counted.
func (e Event) URI() string {
	return "/events/" + e.ID
}

// Editable reports whether the event's fields may currently change.
func (e Event) Editable() bool {
	return e.State == StatePending || e.State == StateCanceled
}

// ApplyAdminPatch applies an administrator's patch.
// category is the resolved category when p.Category is set.
// confirmed is the event's current confirmed request count.
func (e *Event) ApplyAdminPatch(p EventPatch, category *Category, confirmed int, now time.Time) error {
	next := e.State
	if p.StateAction != nil {
		switch *p.StateAction {
		case ActionPublish:
			switch e.State {
			case StatePublished:
				return ErrAlreadyPublished
			case StateCanceled:
				return ErrPublishRejected
			}
			next = StatePublished
		case ActionReject:
			if e.State == StatePublished {
				return ErrRejectPublished
			}
			next = StateCanceled
		default:
			return ErrUnknownAdminAction
		}
	}

	if p.HasFieldEdits() && !e.Editable() {
		return ErrEditPublished
	}
	checkHorizon := p.HasFieldEdits() || next == StatePublished && e.State != StatePublished
	if err := e.applyFields(p, category, confirmed, now, AdminEditHorizon, checkHorizon); err != nil {
		return err
	}

	if next == StatePublished && e.State != StatePublished {
		published := now
		e.PublishedOn = &published
	}
	e.State = next
	return nil
}

// ApplyInitiatorPatch applies the initiator's own patch. A patch without a
// state action sends the event back to review.
func (e *Event) ApplyInitiatorPatch(userID string, p EventPatch, category *Category, confirmed int, now time.Time) error {
	if e.Initiator.ID != userID {
		return ErrNotInitiator
	}
	if !e.Editable() {
		return ErrEditPublished
	}

	next := StatePending
	if p.StateAction != nil {
		switch *p.StateAction {
		case ActionSendToReview:
			next = StatePending
		case ActionCancelReview:
			next = StateCanceled
		default:
			return ErrUnknownInitiatorAction
		}
	}

	checkHorizon := p.HasFieldEdits() || next == StatePending
	if err := e.applyFields(p, category, confirmed, now, InitiatorEditHorizon, checkHorizon); err != nil {
		return err
	}
	e.State = next
	return nil
}

// applyFields checks the horizon and limit rules, then copies set fields.
// It mutates nothing when a rule fails. The horizon is measured against the
// effective start date: the patched one when present.
func (e *Event) applyFields(p EventPatch, category *Category, confirmed int, now time.Time, horizon time.Duration, checkHorizon bool) error {
	date := e.EventDate
	if p.EventDate != nil {
		date = p.EventDate.Time
	}
	if checkHorizon && date.Before(now.Add(horizon)) {
		return ErrTooSoon
	}
	if p.ParticipantLimit != nil && *p.ParticipantLimit > 0 && *p.ParticipantLimit < confirmed {
		return ErrLimitBelowConfirmed
	}

	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if category != nil {
		e.Category = *category
	}
	if p.EventDate != nil {
		e.EventDate = p.EventDate.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	return nil
}

// EventPatch carries optional changes to an event; nil fields stay unchanged.
type EventPatch struct {
	Title             *string      `json:"title"`
	Annotation        *string      `json:"annotation"`
	Description       *string      `json:"description"`
	Category          *string      `json:"category"`
	EventDate         *DateTime    `json:"eventDate"`
	Location          *Location    `json:"location"`
	Paid              *bool        `json:"paid"`
	ParticipantLimit  *int         `json:"participantLimit"`
	RequestModeration *bool        `json:"requestModeration"`
	StateAction       *StateAction `json:"stateAction"`
}

// HasFieldEdits reports whether p changes anything besides the state.
func (p EventPatch) HasFieldEdits() bool {
	return p.Title != nil || p.Annotation != nil || p.Description != nil ||
		p.Category != nil || p.EventDate != nil || p.Location != nil ||
		p.Paid != nil || p.ParticipantLimit != nil || p.RequestModeration != nil
}

// Validate checks the shape of the set fields.
func (p EventPatch) Validate() error {
	if p.Title != nil {
		if err := checkLength("title", *p.Title, MinTitleLength, MaxTitleLength); err != nil {
			return err
		}
	}
	if p.Annotation != nil {
		if err := checkLength("annotation", *p.Annotation, MinAnnotationLength, MaxAnnotationLength); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := checkLength("description", *p.Description, MinDescriptionLength, MaxDescriptionLength); err != nil {
			return err
		}
	}
	if p.ParticipantLimit != nil && *p.ParticipantLimit < 0 {
		return apperror.BadRequest("participantLimit must not be negative")
	}
	if p.EventDate != nil && p.EventDate.IsZero() {
		return apperror.BadRequest("eventDate must not be null")
	}
	return nil
}

// NewEventRequest is the payload for creating an event.
type NewEventRequest struct {
	Annotation        string    `json:"annotation"`
	Category          string    `json:"category"`
	Description       string    `json:"description"`
	EventDate         DateTime  `json:"eventDate"`
	Location          *Location `json:"location"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             string    `json:"title"`
}

// Validate checks the payload; now anchors the minimum start date.
func (r NewEventRequest) Validate(now time.Time) error {
	if err := checkLength("title", r.Title, MinTitleLength, MaxTitleLength); err != nil {
		return err
	}
	if err := checkLength("annotation", r.Annotation, MinAnnotationLength, MaxAnnotationLength); err != nil {
		return err
	}
	if err := checkLength("description", r.Description, MinDescriptionLength, MaxDescriptionLength); err != nil {
		return err
	}
	if r.Category == "" {
		return apperror.BadRequest("category is required")
	}
	if r.Location == nil {
		return apperror.BadRequest("location is required")
	}
	if r.EventDate.IsZero() {
		return apperror.BadRequest("eventDate is required")
	}
	if r.EventDate.Before(now.Add(InitiatorEditHorizon)) {
		return apperror.BadRequest("eventDate must be at least 2 hours in the future")
	}
	if r.ParticipantLimit != nil && *r.ParticipantLimit < 0 {
		return apperror.BadRequest("participantLimit must not be negative")
	}
	return nil
}

// NewEvent builds a PENDING event from a validated request.
func NewEvent(id string, r NewEventRequest, category Category, initiator UserShort, now time.Time) Event {
	ev := Event{
		ID:                id,
		Title:             r.Title,
		Annotation:        r.Annotation,
		Description:       r.Description,
		Category:          category,
		Initiator:         initiator,
		Location:          *r.Location,
		EventDate:         r.EventDate.Time,
		State:             StatePending,
		CreatedOn:         now,
		RequestModeration: true,
	}
	if r.Paid != nil {
		ev.Paid = *r.Paid
	}
	if r.ParticipantLimit != nil {
		ev.ParticipantLimit = *r.ParticipantLimit
	}
	if r.RequestModeration != nil {
		ev.RequestModeration = *r.RequestModeration
	}
	return ev
}

// EventSort selects the ordering of public listings.
type EventSort string

const (
	SortEventDate EventSort = "EVENT_DATE"
	SortViews     EventSort = "VIEWS"
)

// EventQuery is a filter over stored events. Empty slices and nil pointers
// do not filter. Limit 0 returns every match.
type EventQuery struct {
	Users         []string
	States        []EventState
	Categories    []string
	RangeStart    *time.Time
	RangeEnd      *time.Time
	Paid          *bool
	Text          string
	OnlyAvailable bool
	DateDesc      bool
	Offset        int
	Limit         int
}
