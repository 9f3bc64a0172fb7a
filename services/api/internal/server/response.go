package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"soundboard/internal/util"
	"soundboard/pkg/speech"
	"soundboard/pkg/storage"
	"soundboard/services/api/internal/app"
)

// envelope is the body of every API response except health.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeJSON(w, status, envelope{
		Success:   true,
		Message:   message,
		RequestID: util.RequestIDFromRequest(r),
		Data:      data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, envelope{
		Success:   false,
		Error:     msg,
		Code:      code,
		RequestID: util.RequestIDFromRequest(r),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "SYSTEM_METHOD_NOT_ALLOWED", "method not allowed")
}

// writeAppError maps an app error onto a status and a code prefixed with resource.
// 5xx details are logged, not returned, except for unclassified errors.
func writeAppError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	status, code, msg := classify(resource, err)
	if status >= http.StatusInternalServerError {
		util.LoggerFromContext(r.Context()).Error("request failed", "code", code, "err", err)
	}
	writeError(w, r, status, code, msg)
}

func classify(resource string, err error) (int, string, string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, "REQUEST_INVALID", err.Error()
	case errors.Is(err, app.ErrAlreadyExists):
		return http.StatusBadRequest, resource + "_ALREADY_EXISTS", err.Error()
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, resource + "_NOT_FOUND", err.Error()
	case errors.Is(err, app.ErrFeatureDisabled):
		return http.StatusServiceUnavailable, "FEATURE_DISABLED", "text generation is not configured"
	case errors.Is(err, app.ErrCreateSoundboard):
		return http.StatusInternalServerError, "SOUNDBOARD_CREATE_FAILED", app.ErrCreateSoundboard.Error()
	case errors.Is(err, speech.ErrSynthesis):
		return http.StatusInternalServerError, "SPEECH_SYNTHESIS_FAILED", speech.ErrSynthesis.Error()
	case errors.Is(err, storage.ErrStorage):
		return http.StatusInternalServerError, "STORAGE_FAILED", "storage operation failed"
	case errors.Is(err, app.ErrGeneration):
		return http.StatusInternalServerError, "GENERATION_FAILED", app.ErrGeneration.Error()
	case errors.Is(err, app.ErrPersistence):
		return http.StatusInternalServerError, "DATABASE_ERROR", app.ErrPersistence.Error()
	default:
		return http.StatusInternalServerError, "SYSTEM_INTERNAL_ERROR", err.Error()
	}
}
