package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yashng7/zero-grid/internal/platform/httpx"
	"github.com/yashng7/zero-grid/internal/ratelimit"
	"github.com/yashng7/zero-grid/internal/shared"
)

// Handler serves profile endpoints. Routes expect an authenticated identity in
// the request context.
type Handler struct {
	logger  *slog.Logger
	service *Service
	limiter *ratelimit.Limiter
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, limiter *ratelimit.Limiter) *Handler {
	return &Handler{logger: logger, service: service, limiter: limiter}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.updateProfile)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.Unauthorized("Authentication required"))
		return
	}
	if !h.limiter.Guard(w, r, ratelimit.Key("profile", id.UserID), ratelimit.Default, "") {
		return
	}

	user, err := h.service.GetProfile(r.Context(), id.UserID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.Unauthorized("Authentication required"))
		return
	}
	if !h.limiter.Guard(w, r, ratelimit.Key("update-profile", id.UserID), ratelimit.Default, "") {
		return
	}

	var req ProfileUpdate
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, profileMessages))
		return
	}
	if err := ValidateProfileUpdate(req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id.UserID, req)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}
