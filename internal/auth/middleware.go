package auth

import (
	"log/slog"
	"net/http"

	"github.com/yashng7/zero-grid/internal/platform/httpx"
	"github.com/yashng7/zero-grid/internal/shared"
)

// RequireAuth rejects requests without a valid access token cookie and stores
// the verified identity in the request context.
func RequireAuth(issuer *TokenIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				httpx.RespondError(w, logger, shared.Unauthorized("Authentication required"))
				return
			}
			payload, err := issuer.VerifyAccess(cookie.Value)
			if err != nil {
				logger.Debug("access token rejected", slog.String("path", r.URL.Path))
				httpx.RespondError(w, logger, shared.Unauthorized("Invalid or expired token"))
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: payload.UserID, Email: payload.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
