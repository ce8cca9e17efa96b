package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yashng7/zero-grid/internal/shared"
)

const internalErrorMessage = "Internal server error"

// StatusFor maps a domain error onto its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to error envelopes. Errors without a known
// kind are logged and answered with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		Fail(w, status, internalErrorMessage)
		return
	}
	msg, ok := shared.Message(err)
	if !ok {
		msg = http.StatusText(status)
	}
	Fail(w, status, msg)
}
