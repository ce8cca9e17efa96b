// Package mail delivers rendered messages through a configured provider.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderLog      = "log"
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
)

// ErrMissingAPIKey is returned when a remote provider is configured without a key.
var ErrMissingAPIKey = errors.New("mail: api key required")

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// From is the sender identity shared by every provider.
type From struct {
	Address string
	Name    string
}

func (f From) String() string {
	if f.Name == "" {
		return f.Address
	}
	return fmt.Sprintf("%s <%s>", f.Name, f.Address)
}

// New returns the Sender for provider. An empty provider logs messages
// instead of sending them.
func New(provider, apiKey string, from From, logger *slog.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderLog:
		return NewLogSender(logger), nil
	case ProviderResend:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewResendSender(apiKey, from), nil
	case ProviderSendGrid:
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewSendGridSender(apiKey, from), nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", provider)
	}
}

// LogSender writes messages to the logger. Used in development and tests.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs msg instead of delivering it.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "mail delivered to log", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}
