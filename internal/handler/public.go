package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
)

// searchEventsPublic handles GET /events.
func (h *Handler) searchEventsPublic(w http.ResponseWriter, r *http.Request) {
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
	paid, err := boolParam(q, "paid")
	if err != nil {
		h.fail(w, err)
		return
	}
	onlyAvailable, err := boolParam(q, "onlyAvailable")
	if err != nil {
		h.fail(w, err)
		return
	}

	f := service.PublicEventFilter{
		Text:       q.Get("text"),
		Categories: list(q, "categories"),
		Paid:       paid,
		RangeStart: start,
		RangeEnd:   end,
		Sort:       model.EventSort(q.Get("sort")),
		Page:       p,
	}
	if onlyAvailable != nil {
		f.OnlyAvailable = *onlyAvailable
	}
	events, err := h.svc.Events.SearchPublic(r.Context(), f, clientIP(r))
	h.respond(w, http.StatusOK, events, err)
}

// getPublishedEvent handles GET /events/{id}.
func (h *Handler) getPublishedEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Events.GetPublished(r.Context(), chi.URLParam(r, "id"), clientIP(r))
	h.respond(w, http.StatusOK, ev, err)
}

// listCategories handles GET /categories?from=&size=.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	p, err := page(r.URL.Query())
	if err != nil {
		h.fail(w, err)
		return
	}
	categories, err := h.svc.Categories.List(r.Context(), p)
	h.respond(w, http.StatusOK, categories, err)
}

// getCategory handles GET /categories/{catId}.
func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Categories.Get(r.Context(), chi.URLParam(r, "catId"))
	h.respond(w, http.StatusOK, c, err)
}

// listCompilations handles GET /compilations?pinned=&from=&size=.
func (h *Handler) listCompilations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := page(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	pinned, err := boolParam(q, "pinned")
	if err != nil {
		h.fail(w, err)
		return
	}
	compilations, err := h.svc.Compilations.List(r.Context(), pinned, p)
	h.respond(w, http.StatusOK, compilations, err)
}

// getCompilation handles GET /compilations/{compId}.
func (h *Handler) getCompilation(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Compilations.Get(r.Context(), chi.URLParam(r, "compId"))
	h.respond(w, http.StatusOK, c, err)
}

// listEventComments handles GET /comments/events/{eventId}.
func (h *Handler) listEventComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments.ListByEvent(r.Context(), chi.URLParam(r, "eventId"))
	h.respond(w, http.StatusOK, model.ToCommentDtos(comments), err)
}
