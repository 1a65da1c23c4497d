package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
)

// EventShort is the listing view of an event.
type EventShort struct {
	ID                string    `json:"id"`
	Annotation        string    `json:"annotation"`
	Category          Category  `json:"category"`
	EventDate         DateTime  `json:"eventDate"`
	Initiator         UserShort `json:"initiator"`
	Paid              bool      `json:"paid"`
	Title             string    `json:"title"`
	ConfirmedRequests int64     `json:"confirmedRequests"`
	Views             int64     `json:"views"`
}

// EventFull is the detailed view of an event.
type EventFull struct {
	EventShort
	CreatedOn         DateTime       `json:"createdOn"`
	Description       string         `json:"description"`
	Location          Location       `json:"location"`
	ParticipantLimit  int            `json:"participantLimit"`
	PublishedOn       *DateTime      `json:"publishedOn"`
	RequestModeration bool           `json:"requestModeration"`
	State             EventState     `json:"state"`
	Comments          []CommentShort `json:"comments,omitempty"`
}

// ParticipationRequestDto is the wire form of a participation request.
type ParticipationRequestDto struct {
	ID        string        `json:"id"`
	Event     string        `json:"event"`
	Requester string        `json:"requester"`
	Status    RequestStatus `json:"status"`
	Created   DateTime      `json:"created"`
}

// ToRequestDto converts r to its wire form.
func ToRequestDto(r ParticipationRequest) ParticipationRequestDto {
	return ParticipationRequestDto{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status,
		Created:   NewDateTime(r.Created),
	}
}

// ToRequestDtos converts a slice, never returning nil.
func ToRequestDtos(rs []ParticipationRequest) []ParticipationRequestDto {
	out := make([]ParticipationRequestDto, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToRequestDto(r))
	}
	return out
}

// StatusUpdateResult is the response of a bulk status update.
type StatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequestDto `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestDto `json:"rejectedRequests"`
}

// ToStatusUpdateResult converts u to its wire form.
func ToStatusUpdateResult(u StatusUpdate) StatusUpdateResult {
	return StatusUpdateResult{
		ConfirmedRequests: ToRequestDtos(u.Confirmed),
		RejectedRequests:  ToRequestDtos(u.Rejected),
	}
}

// NewUserRequest is the payload for registering a user.
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate checks the payload.
func (r NewUserRequest) Validate() error {
	if err := checkLength("name", r.Name, MinUserNameLength, MaxUserNameLength); err != nil {
		return err
	}
	if err := checkLength("email", r.Email, MinEmailLength, MaxEmailLength); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != strings.TrimSpace(r.Email) {
		return apperror.BadRequest("email must be a valid address")
	}
	return nil
}

// CategoryRequest is the payload for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate checks the payload.
func (r CategoryRequest) Validate() error {
	return checkLength("name", r.Name, 1, MaxCategoryName)
}

// NewCompilationRequest is the payload for creating a compilation.
type NewCompilationRequest struct {
	Events []string `json:"events"`
	Pinned *bool    `json:"pinned"`
	Title  string   `json:"title"`
}

// Validate checks the payload.
func (r NewCompilationRequest) Validate() error {
	return checkLength("title", r.Title, 1, MaxCompilationTitle)
}

// UpdateCompilationRequest carries optional compilation changes.
type UpdateCompilationRequest struct {
	Events *[]string `json:"events"`
	Pinned *bool     `json:"pinned"`
	Title  *string   `json:"title"`
}

// Validate checks the set fields.
func (r UpdateCompilationRequest) Validate() error {
	if r.Title != nil {
		return checkLength("title", *r.Title, 1, MaxCompilationTitle)
	}
	return nil
}

// CompilationDto is the wire form of a compilation.
type CompilationDto struct {
	ID     string       `json:"id"`
	Pinned bool         `json:"pinned"`
	Title  string       `json:"title"`
	Events []EventShort `json:"events"`
}

// CommentRequest is the payload for writing or editing a comment.
type CommentRequest struct {
	CommentText string `json:"commentText"`
}

// Validate checks the payload.
func (r CommentRequest) Validate() error {
	return checkLength("commentText", r.CommentText, 1, MaxCommentLength)
}

// CommentEvent identifies the event a comment belongs to.
type CommentEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CommentDto is the wire form of a comment.
type CommentDto struct {
	ID          string       `json:"id"`
	CommentText string       `json:"commentText"`
	Event       CommentEvent `json:"event"`
	Author      UserShort    `json:"author"`
	CreatedAt   DateTime     `json:"createdAt"`
	UpdatedAt   DateTime     `json:"updatedAt"`
}

// CommentShort is a comment embedded in its event.
type CommentShort struct {
	ID          string    `json:"id"`
	CommentText string    `json:"commentText"`
	Author      UserShort `json:"author"`
	CreatedAt   DateTime  `json:"createdAt"`
	UpdatedAt   DateTime  `json:"updatedAt"`
}

// ToCommentDto converts c to its wire form.
func ToCommentDto(c Comment) CommentDto {
	return CommentDto{
		ID:          c.ID,
		CommentText: c.Text,
		Event:       CommentEvent{ID: c.EventID, Title: c.EventTitle},
		Author:      c.Author,
		CreatedAt:   NewDateTime(c.CreatedAt),
		UpdatedAt:   NewDateTime(c.UpdatedAt),
	}
}

// ToCommentDtos converts a slice, never returning nil.
func ToCommentDtos(cs []Comment) []CommentDto {
	out := make([]CommentDto, 0, len(cs))
	for _, c := range cs {
		out = append(out, ToCommentDto(c))
	}
	return out
}

// ToCommentShorts converts comments for embedding in an event.
func ToCommentShorts(cs []Comment) []CommentShort {
	out := make([]CommentShort, 0, len(cs))
	for _, c := range cs {
		out = append(out, CommentShort{
			ID:          c.ID,
			CommentText: c.Text,
			Author:      c.Author,
			CreatedAt:   NewDateTime(c.CreatedAt),
			UpdatedAt:   NewDateTime(c.UpdatedAt),
		})
	}
	return out
}

// CommentQuery filters comments for administrators.
type CommentQuery struct {
	Text       string
	Users      []string
	Events     []string
	Comments   []string
	RangeStart *time.Time
	RangeEnd   *time.Time
	Offset     int
	Limit      int
}

// ApiError is the JSON error payload.
type ApiError struct {
	Status    string   `json:"status"`
	Reason    string   `json:"reason"`
	Message   string   `json:"message"`
	Timestamp DateTime `json:"timestamp"`
}
