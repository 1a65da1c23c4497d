package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

// createEvent handles POST /users/{userId}/events.
func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req model.NewEventRequest
	if !h.decode(w, r, &req) {
		return
	}
	ev, err := h.svc.Events.Create(r.Context(), chi.URLParam(r, "userId"), req)
	h.respond(w, http.StatusCreated, ev, err)
}

// listOwnEvents handles GET /users/{userId}/events?from=&size=.
func (h *Handler) listOwnEvents(w http.ResponseWriter, r *http.Request) {
	p, err := page(r.URL.Query())
	if err != nil {
		h.fail(w, err)
		return
	}
	events, err := h.svc.Events.ListByInitiator(r.Context(), chi.URLParam(r, "userId"), p)
	h.respond(w, http.StatusOK, events, err)
}

// getOwnEvent handles GET /users/{userId}/events/{eventId}.
func (h *Handler) getOwnEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Events.GetByInitiator(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "eventId"))
	h.respond(w, http.StatusOK, ev, err)
}

// updateOwnEvent handles PATCH /users/{userId}/events/{eventId}.
func (h *Handler) updateOwnEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if !h.decode(w, r, &patch) {
		return
	}
	ev, err := h.svc.Events.UpdateByInitiator(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "eventId"), patch)
	h.respond(w, http.StatusOK, ev, err)
}

// listEventRequests handles GET /users/{userId}/events/{eventId}/requests.
func (h *Handler) listEventRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.Requests.ListForEvent(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "eventId"))
	h.respond(w, http.StatusOK, model.ToRequestDtos(requests), err)
}

// updateRequestStatuses handles PATCH /users/{userId}/events/{eventId}/requests.
func (h *Handler) updateRequestStatuses(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.svc.Requests.UpdateStatuses(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "eventId"), req)
	h.respond(w, http.StatusOK, model.ToStatusUpdateResult(result), err)
}

// createRequest handles POST /users/{userId}/requests?eventId=.
func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	pr, err := h.svc.Requests.Create(r.Context(), chi.URLParam(r, "userId"), r.URL.Query().Get("eventId"))
	h.respond(w, http.StatusCreated, model.ToRequestDto(pr), err)
}

// listOwnRequests handles GET /users/{userId}/requests.
func (h *Handler) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.Requests.ListByRequester(r.Context(), chi.URLParam(r, "userId"))
	h.respond(w, http.StatusOK, model.ToRequestDtos(requests), err)
}

// cancelRequest handles PATCH /users/{userId}/requests/{requestId}/cancel.
func (h *Handler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	pr, err := h.svc.Requests.Cancel(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "requestId"))
	h.respond(w, http.StatusOK, model.ToRequestDto(pr), err)
}

// createComment handles POST /users/{userId}/comments/events/{eventId}.
func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var req model.CommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Comments.Create(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "eventId"), req)
	h.respond(w, http.StatusCreated, model.ToCommentDto(c), err)
}

// getComment handles GET /users/{userId}/comments/{commentId} and
// GET /comments/{commentId}.
func (h *Handler) getComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Comments.Get(r.Context(), chi.URLParam(r, "commentId"))
	h.respond(w, http.StatusOK, model.ToCommentDto(c), err)
}

// updateOwnComment handles PATCH /users/{userId}/comments/{commentId}.
func (h *Handler) updateOwnComment(w http.ResponseWriter, r *http.Request) {
	var req model.CommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Comments.UpdateByAuthor(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "commentId"), req)
	h.respond(w, http.StatusOK, model.ToCommentDto(c), err)
}

// deleteOwnComment handles DELETE /users/{userId}/comments/{commentId}.
func (h *Handler) deleteOwnComment(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.svc.Comments.DeleteByAuthor(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "commentId")))
}
