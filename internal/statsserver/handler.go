package statsserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/handler"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

// HitStore is the storage the HTTP layer needs.
type HitStore interface {
	SaveHit(ctx context.Context, hit stats.EndpointHit) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.ViewStats, error)
}

// Handler serves the statistics API.
type Handler struct {
	store HitStore
	log   *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(store HitStore, log *zap.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Routes builds the stats-service router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.AccessLog(h.log))

	r.Get("/health", handler.HealthCheck)
	r.Post("/hit", h.SaveHit)
	r.Get("/stats", h.GetStats)
	return r
}

// SaveHit handles POST /hit.
func (h *Handler) SaveHit(w http.ResponseWriter, r *http.Request) {
	var hit stats.EndpointHit
	if err := handler.DecodeJSON(w, r, &hit); err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	if err := validateHit(hit); err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	if err := h.store.SaveHit(r.Context(), hit); err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func validateHit(hit stats.EndpointHit) error {
	switch {
	case strings.TrimSpace(hit.App) == "":
		return apperror.BadRequest("app is required")
	case strings.TrimSpace(hit.URI) == "":
		return apperror.BadRequest("uri is required")
	case strings.TrimSpace(hit.IP) == "":
		return apperror.BadRequest("ip is required")
	case hit.Timestamp.IsZero():
		return apperror.BadRequest("timestamp is required")
	}
	return nil
}

// GetStats handles GET /stats?start=&end=&uris=&unique=.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := requiredDate(q.Get("start"), "start")
	if err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	end, err := requiredDate(q.Get("end"), "end")
	if err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	if end.Before(start) {
		handler.WriteError(w, h.log, apperror.BadRequest("end must not be before start"))
		return
	}

	unique := false
	if v := q.Get("unique"); v != "" {
		unique, err = strconv.ParseBool(v)
		if err != nil {
			handler.WriteError(w, h.log, apperror.BadRequest("unique must be a boolean"))
			return
		}
	}

	var uris []string
	for _, v := range q["uris"] {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				uris = append(uris, u)
			}
		}
	}

	result, err := h.store.GetStats(r.Context(), start, end, uris, unique)
	if err != nil {
		handler.WriteError(w, h.log, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, result)
}

func requiredDate(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, apperror.BadRequest("%s is required", name)
	}
	t, err := model.ParseDateTime(v)
	if err != nil {
		return time.Time{}, apperror.BadRequest("%s: %v", name, err)
	}
	return t, nil
}
