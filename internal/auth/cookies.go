package auth

import (
	"net/http"
	"time"
)

// Cookie names carrying the token pair.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

func setTokenCookies(w http.ResponseWriter, tokens Tokens, issuer *TokenIssuer, secure bool) {
	http.SetCookie(w, tokenCookie(AccessTokenCookie, tokens.AccessToken, issuer.AccessTTL(), secure))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, tokens.RefreshToken, issuer.RefreshTTL(), secure))
}

func clearTokenCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := tokenCookie(name, "", 0, secure)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func tokenCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
