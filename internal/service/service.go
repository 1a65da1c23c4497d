// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
)

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context, ids []string, page model.Page) ([]model.User, error)
	Delete(ctx context.Context, id string) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	Create(ctx context.Context, c model.Category) error
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.Category, error)
	List(ctx context.Context, page model.Page) ([]model.Category, error)
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e model.Event) error
	GetByID(ctx context.Context, id string) (model.Event, error)
	ListByInitiator(ctx context.Context, userID string, page model.Page) ([]model.Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	Search(ctx context.Context, q model.EventQuery) ([]model.Event, error)
	ExistsByCategory(ctx context.Context, categoryID string) (bool, error)
	Update(ctx context.Context, id string, mutate func(e *model.Event, confirmed int) error) (model.Event, error)
}

// ConfirmedCounter bulk-counts confirmed requests per event.
type ConfirmedCounter interface {
	CountConfirmed(ctx context.Context, eventIDs []string) (map[string]int, error)
}

// RequestStore persists participation requests.
type RequestStore interface {
	ConfirmedCounter
	Create(ctx context.Context, pr model.ParticipationRequest, admit repository.AdmitFunc) (model.ParticipationRequest, error)
	UpdateStatuses(ctx context.Context, eventID string, ids []string, decide repository.DecideFunc) (model.StatusUpdate, error)
	GetByID(ctx context.Context, id string) (model.ParticipationRequest, error)
	SetStatus(ctx context.Context, id string, status model.RequestStatus) error
	ListByRequester(ctx context.Context, userID string) ([]model.ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.ParticipationRequest, error)
}

// CompilationStore persists compilations.
type CompilationStore interface {
	Create(ctx context.Context, c model.Compilation) error
	Update(ctx context.Context, c model.Compilation) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.Compilation, error)
	List(ctx context.Context, pinned *bool, page model.Page) ([]model.Compilation, error)
}

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, c model.Comment) error
	UpdateText(ctx context.Context, c model.Comment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.Comment, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, userID string) ([]model.Comment, error)
	Search(ctx context.Context, q model.CommentQuery) ([]model.Comment, error)
}

// clock and ids are swapped out in tests.
type clock func() time.Time

type idGen func() string

func newID() string { return uuid.New().String() }

// translate maps repository sentinels to client-facing errors. what names
// the missing object, e.g. "event with id=42".
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("%s was not found", what)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Conflict("%s already exists", what)
	case errors.Is(err, repository.ErrReferenced):
		return apperror.Conflict("%s is still referenced", what)
	case apperror.KindOf(err) != apperror.KindInternal:
		return err
	default:
		return apperror.Internal(what+" could not be processed", err)
	}
}

func userRef(id string) string     { return "user with id=" + id }
func eventRef(id string) string    { return "event with id=" + id }
func categoryRef(id string) string { return "category with id=" + id }

// requireUser fails with NotFound when the user does not exist.
func requireUser(ctx context.Context, users UserStore, id string) (model.User, error) {
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, translate(err, userRef(id))
	}
	return u, nil
}
