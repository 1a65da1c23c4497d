package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

// listUsers handles GET /admin/users?ids=&from=&size=.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := page(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	users, err := h.svc.Users.List(r.Context(), list(q, "ids"), p)
	h.respond(w, http.StatusOK, users, err)
}

// createUser handles POST /admin/users.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req model.NewUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Users.Create(r.Context(), req)
	h.respond(w, http.StatusCreated, user, err)
}

// deleteUser handles DELETE /admin/users/{userId}.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.svc.Users.Delete(r.Context(), chi.URLParam(r, "userId")))
}

// createCategory handles POST /admin/categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Categories.Create(r.Context(), req)
	h.respond(w, http.StatusCreated, c, err)
}

// renameCategory handles PATCH /admin/categories/{catId}.
func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Categories.Rename(r.Context(), chi.URLParam(r, "catId"), req)
	h.respond(w, http.StatusOK, c, err)
}

// deleteCategory handles DELETE /admin/categories/{catId}.
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.svc.Categories.Delete(r.Context(), chi.URLParam(r, "catId")))
}

// searchEventsAdmin handles GET /admin/events.
func (h *Handler) searchEventsAdmin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := page(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	start, end, err := dateRange(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	var states []model.EventState
	for _, s := range list(q, "states") {
		states = append(states, model.EventState(s))
	}
	events, err := h.svc.Events.SearchAdmin(r.Context(), service.AdminEventFilter{
		Users:      list(q, "users"),
		States:     states,
		Categories: list(q, "categories"),
		RangeStart: start,
		RangeEnd:   end,
		Page:       p,
	})
	h.respond(w, http.StatusOK, events, err)
}

// updateEventAdmin handles PATCH /admin/events/{eventId}.
func (h *Handler) updateEventAdmin(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if !h.decode(w, r, &patch) {
		return
	}
	ev, err := h.svc.Events.UpdateByAdmin(r.Context(), chi.URLParam(r, "eventId"), patch)
	h.respond(w, http.StatusOK, ev, err)
}

// createCompilation handles POST /admin/compilations.
func (h *Handler) createCompilation(w http.ResponseWriter, r *http.Request) {
	var req model.NewCompilationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Compilations.Create(r.Context(), req)
	h.respond(w, http.StatusCreated, c, err)
}

// updateCompilation handles PATCH /admin/compilations/{compId}.
func (h *Handler) updateCompilation(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCompilationRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Compilations.Update(r.Context(), chi.URLParam(r, "compId"), req)
	h.respond(w, http.StatusOK, c, err)
}

// deleteCompilation handles DELETE /admin/compilations/{compId}.
func (h *Handler) deleteCompilation(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.svc.Compilations.Delete(r.Context(), chi.URLParam(r, "compId")))
}

// searchComments handles GET /admin/comments.
func (h *Handler) searchComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := page(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	start, end, err := dateRange(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	comments, err := h.svc.Comments.Search(r.Context(), service.CommentFilter{
		Text:       q.Get("commentText"),
		Users:      list(q, "users"),
		Events:     list(q, "events"),
		Comments:   list(q, "comments"),
		RangeStart: start,
		RangeEnd:   end,
		Page:       p,
	})
	h.respond(w, http.StatusOK, model.ToCommentDtos(comments), err)
}

// listCommentsByAuthor handles GET /admin/comments/users/{userId}.
func (h *Handler) listCommentsByAuthor(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments.ListByAuthor(r.Context(), chi.URLParam(r, "userId"))
	h.respond(w, http.StatusOK, model.ToCommentDtos(comments), err)
}

// updateCommentAdmin handles PATCH /admin/comments/{commentId}.
func (h *Handler) updateCommentAdmin(w http.ResponseWriter, r *http.Request) {
	var req model.CommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.svc.Comments.UpdateByAdmin(r.Context(), chi.URLParam(r, "commentId"), req)
	h.respond(w, http.StatusOK, model.ToCommentDto(c), err)
}

// deleteCommentAdmin handles DELETE /admin/comments/{commentId}.
func (h *Handler) deleteCommentAdmin(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, h.svc.Comments.DeleteByAdmin(r.Context(), chi.URLParam(r, "commentId")))
}
