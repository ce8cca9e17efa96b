package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yashng7/zero-grid/internal/platform/httpx"
	"github.com/yashng7/zero-grid/internal/ratelimit"
	"github.com/yashng7/zero-grid/internal/shared"
)

const resetRateLimitMessage = "Too many requests. Please try again later."

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	limiter      *ratelimit.Limiter
	secureCookie bool
}

// NewHandler constructs a Handler instance. secureCookie marks token cookies
// Secure and should be set in production.
func NewHandler(logger *slog.Logger, service *Service, limiter *ratelimit.Limiter, secureCookie bool) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		limiter:      limiter,
		secureCookie: secureCookie,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password", h.handleResetPassword)
	r.Get("/reset-password", h.handleVerifyResetToken)
	r.With(RequireAuth(h.service.Issuer(), h.logger)).Get("/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("register", ratelimit.ClientIP(r)), ratelimit.Default, "") {
		return
	}

	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, registerMessages))
		return
	}
	if err := ValidateRegister(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.Register(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	setTokenCookies(w, result.Tokens, h.service.Issuer(), h.secureCookie)
	httpx.OK(w, http.StatusCreated, result)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("login", ratelimit.ClientIP(r)), ratelimit.Default, "") {
		return
	}

	var in LoginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, loginMessages))
		return
	}
	if err := ValidateLogin(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.Login(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	setTokenCookies(w, result.Tokens, h.service.Issuer(), h.secureCookie)
	httpx.OK(w, http.StatusOK, result)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("logout", ratelimit.ClientIP(r)), ratelimit.Default, "") {
		return
	}
	clearTokenCookies(w, h.secureCookie)
	httpx.Message(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("refresh", ratelimit.ClientIP(r)), ratelimit.Default, "") {
		return
	}

	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		httpx.RespondError(w, h.logger, shared.Unauthorized("Authentication required"))
		return
	}
	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	setTokenCookies(w, result.Tokens, h.service.Issuer(), h.secureCookie)
	httpx.OK(w, http.StatusOK, result)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.Unauthorized("Not authenticated"))
		return
	}
	if !h.limiter.Guard(w, r, ratelimit.Key("me", id.UserID), ratelimit.Default, "") {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, user)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("forgot-password", ratelimit.ClientIP(r)), ratelimit.ForgotPassword, resetRateLimitMessage) {
		return
	}

	var in ForgotPasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, forgotPasswordMessages))
		return
	}
	if err := ValidateForgotPassword(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), in.Email); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "If an account exists with this email, a password reset link has been sent.")
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("reset-password", ratelimit.ClientIP(r)), ratelimit.ResetPassword, resetRateLimitMessage) {
		return
	}

	var in ResetPasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, h.logger, shared.DecodeError(err, resetPasswordMessages))
		return
	}
	if err := ValidateResetPassword(in); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Password has been reset successfully.")
}

func (h *Handler) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Guard(w, r, ratelimit.Key("verify-reset", ratelimit.ClientIP(r)), ratelimit.Default, "") {
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.RespondError(w, h.logger, shared.Validation("Token is required"))
		return
	}
	valid, err := h.service.VerifyResetToken(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]bool{"valid": valid})
}
