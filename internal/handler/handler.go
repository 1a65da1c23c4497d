// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

// Events is the event service as seen by the HTTP layer.
type Events interface {
	Create(ctx context.Context, userID string, req model.NewEventRequest) (model.EventFull, error)
	ListByInitiator(ctx context.Context, userID string, page model.Page) ([]model.EventShort, error)
	GetByInitiator(ctx context.Context, userID, eventID string) (model.EventFull, error)
	UpdateByInitiator(ctx context.Context, userID, eventID string, patch model.EventPatch) (model.EventFull, error)
	UpdateByAdmin(ctx context.Context, eventID string, patch model.EventPatch) (model.EventFull, error)
	SearchAdmin(ctx context.Context, f service.AdminEventFilter) ([]model.EventFull, error)
	SearchPublic(ctx context.Context, f service.PublicEventFilter, ip string) ([]model.EventShort, error)
	GetPublished(ctx context.Context, eventID, ip string) (model.EventFull, error)
}

// Requests is the participation request service.
type Requests interface {
	Create(ctx context.Context, userID, eventID string) (model.ParticipationRequest, error)
	ListByRequester(ctx context.Context, userID string) ([]model.ParticipationRequest, error)
	Cancel(ctx context.Context, userID, requestID string) (model.ParticipationRequest, error)
	ListForEvent(ctx context.Context, userID, eventID string) ([]model.ParticipationRequest, error)
	UpdateStatuses(ctx context.Context, userID, eventID string, req model.StatusUpdateRequest) (model.StatusUpdate, error)
}

// Users is the user administration service.
type Users interface {
	Create(ctx context.Context, req model.NewUserRequest) (model.User, error)
	List(ctx context.Context, ids []string, page model.Page) ([]model.User, error)
	Delete(ctx context.Context, id string) error
}

// Categories is the category service.
type Categories interface {
	Create(ctx context.Context, req model.CategoryRequest) (model.Category, error)
	Rename(ctx context.Context, id string, req model.CategoryRequest) (model.Category, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.Category, error)
	List(ctx context.Context, page model.Page) ([]model.Category, error)
}

// Compilations is the compilation service.
type Compilations interface {
	Create(ctx context.Context, req model.NewCompilationRequest) (model.CompilationDto, error)
	Update(ctx context.Context, id string, req model.UpdateCompilationRequest) (model.CompilationDto, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.CompilationDto, error)
	List(ctx context.Context, pinned *bool, page model.Page) ([]model.CompilationDto, error)
}

// Comments is the comment service.
type Comments interface {
	Create(ctx context.Context, userID, eventID string, req model.CommentRequest) (model.Comment, error)
	Get(ctx context.Context, id string) (model.Comment, error)
	UpdateByAuthor(ctx context.Context, userID, commentID string, req model.CommentRequest) (model.Comment, error)
	UpdateByAdmin(ctx context.Context, commentID string, req model.CommentRequest) (model.Comment, error)
	DeleteByAuthor(ctx context.Context, userID, commentID string) error
	DeleteByAdmin(ctx context.Context, commentID string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, userID string) ([]model.Comment, error)
	Search(ctx context.Context, f service.CommentFilter) ([]model.Comment, error)
}

// Services groups the collaborators of the main API.
type Services struct {
	Events       Events
	Requests     Requests
	Users        Users
	Categories   Categories
	Compilations Compilations
	Comments     Comments
}

// Handler holds all HTTP handlers of the main service.
type Handler struct {
	svc Services
	log *zap.Logger
}

// New constructs a Handler.
func New(svc Services, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes builds the main-service router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(h.log))

	r.Get("/health", HealthCheck)

	r.Route("/admin", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Delete("/{userId}", h.deleteUser)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.createCategory)
			r.Patch("/{catId}", h.renameCategory)
			r.Delete("/{catId}", h.deleteCategory)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.searchEventsAdmin)
			r.Patch("/{eventId}", h.updateEventAdmin)
		})
		r.Route("/compilations", func(r chi.Router) {
			r.Post("/", h.createCompilation)
			r.Patch("/{compId}", h.updateCompilation)
			r.Delete("/{compId}", h.deleteCompilation)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Get("/", h.searchComments)
			r.Get("/users/{userId}", h.listCommentsByAuthor)
			r.Patch("/{commentId}", h.updateCommentAdmin)
			r.Delete("/{commentId}", h.deleteCommentAdmin)
		})
	})

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.createEvent)
			r.Get("/", h.listOwnEvents)
			r.Get("/{eventId}", h.getOwnEvent)
			r.Patch("/{eventId}", h.updateOwnEvent)
			r.Get("/{eventId}/requests", h.listEventRequests)
			r.Patch("/{eventId}/requests", h.updateRequestStatuses)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.createRequest)
			r.Get("/", h.listOwnRequests)
			r.Patch("/{requestId}/cancel", h.cancelRequest)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Post("/events/{eventId}", h.createComment)
			r.Get("/{commentId}", h.getComment)
			r.Patch("/{commentId}", h.updateOwnComment)
			r.Delete("/{commentId}", h.deleteOwnComment)
		})
	})

	r.Get("/events", h.searchEventsPublic)
	r.Get("/events/{id}", h.getPublishedEvent)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{catId}", h.getCategory)
	r.Get("/compilations", h.listCompilations)
	r.Get("/compilations/{compId}", h.getCompilation)
	r.Get("/comments/events/{eventId}", h.listEventComments)
	r.Get("/comments/{commentId}", h.getComment)
	return r
}

// respond writes v or the error.
func (h *Handler) respond(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	WriteJSON(w, status, v)
}

// noContent writes 204 or the error.
func (h *Handler) noContent(w http.ResponseWriter, err error) {
	if err != nil {
		WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads the body into dst, writing the error response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := DecodeJSON(w, r, dst); err != nil {
		WriteError(w, h.log, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	WriteError(w, h.log, err)
}
