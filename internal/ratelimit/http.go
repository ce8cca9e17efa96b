package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/yashng7/zero-grid/internal/platform/httpx"
)

// Header names attached to every rate-limited response.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// DeniedMessage is the default body for a rejected request.
const DeniedMessage = "Rate limit exceeded"

// SetHeaders writes the rate-limit headers for res.
func SetHeaders(w http.ResponseWriter, res Result) {
	h := w.Header()
	h.Set(HeaderLimit, strconv.Itoa(res.Limit))
	h.Set(HeaderRemaining, strconv.Itoa(res.Remaining))
	h.Set(HeaderReset, res.ResetAt.UTC().Format(time.RFC3339))
}

// Guard checks key, writes the headers and, when the request is denied,
// answers 429 with msg. It reports whether the handler may continue.
func (l *Limiter) Guard(w http.ResponseWriter, r *http.Request, key string, cfg Config, msg string) bool {
	res := l.Check(r.Context(), key, cfg)
	SetHeaders(w, res)
	if res.Allowed {
		return true
	}
	if msg == "" {
		msg = DeniedMessage
	}
	httpx.Fail(w, http.StatusTooManyRequests, msg)
	return false
}

// ClientIP returns the caller address used in IP-scoped keys. chi's RealIP
// middleware has already applied X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}

// Key joins an operation name and a subject into a counter key.
func Key(op, subject string) string {
	return op + ":" + subject
}
