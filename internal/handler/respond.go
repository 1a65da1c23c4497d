package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const maxBodyBytes = 1 << 20

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var reasons = map[apperror.Kind]string{
	apperror.KindNotFound:   "The required object was not found.",
	apperror.KindConflict:   "For the requested operation the conditions are not met.",
	apperror.KindForbidden:  "Access to the requested object is denied.",
	apperror.KindBadRequest: "Incorrectly made request.",
	apperror.KindInternal:   "Unexpected server error.",
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as an ApiError payload. Unclassified errors are
// logged and reported without detail.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		log.Error("request failed", zap.Error(err))
	}
	WriteJSON(w, StatusOf(kind), model.ApiError{
		Status:    kind.String(),
		Reason:    reasons[kind],
		Message:   apperror.MessageOf(err),
		Timestamp: model.NewDateTime(time.Now()),
	})
}

// DecodeJSON decodes a size-limited request body into dst, rejecting unknown
// fields. Failures are BadRequest errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.BadRequest("request body is required")
		}
		return apperror.BadRequest("invalid request body: %v", err)
	}
	return nil
}
