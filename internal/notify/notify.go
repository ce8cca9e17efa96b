// Package notify renders transactional emails and submits them to the job
// queue. Submission happens off the request path; failures are logged and
// never reach the caller.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/yashng7/zero-grid/internal/issues"
	"github.com/yashng7/zero-grid/jobs"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTimeout bounds a single queue submission.
const DefaultTimeout = 10 * time.Second

// Subjects of the transactional emails.
const (
	SubjectWelcome         = "ZEROGRID: New Operative Access"
	SubjectProfileUpdated  = "SECURITY: Profile Updated"
	SubjectPasswordReset   = "ZEROGRID: Password Reset Request"
	SubjectPasswordChanged = "ZEROGRID: Password Changed Successfully"
	issueSubjectPrefix     = "ALERT: "
)

var issueTypeLabels = map[issues.Type]string{
	issues.TypeCloudSecurity:    "CLOUD_SECURITY",
	issues.TypeReteamAssessment: "RED_TEAM_OPS",
	issues.TypeVAPT:             "VAPT_PROTOCOL",
}

// Queue accepts email tasks. *jobs.Client satisfies it.
type Queue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Notifier implements the auth, users and issues notifier interfaces.
type Notifier struct {
	queue   Queue
	appURL  string
	logger  *slog.Logger
	timeout time.Duration
	tpl     *template.Template
	wg      sync.WaitGroup
}

// Option customises a Notifier.
type Option func(*Notifier)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// New parses the embedded templates and returns a Notifier. appURL is the
// public base used for links in emails.
func New(queue Queue, appURL string, logger *slog.Logger, opts ...Option) (*Notifier, error) {
	funcMap := template.FuncMap{
		"link": func(u, label string) map[string]string {
			return map[string]string{"URL": u, "Label": label}
		},
	}
	tpl, err := template.New("email").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("notify: parse templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		queue:   queue,
		appURL:  strings.TrimRight(appURL, "/"),
		logger:  logger,
		timeout: DefaultTimeout,
		tpl:     tpl,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type emailData struct {
	Name         string
	DashboardURL string
	ProfileURL   string
	LoginURL     string
	ResetURL     string
	TypeLabel    string
	Issue        issues.Issue
}

func (n *Notifier) data(name string) emailData {
	return emailData{
		Name:         name,
		DashboardURL: n.appURL + "/dashboard",
		ProfileURL:   n.appURL + "/profile",
		LoginURL:     n.appURL + "/login",
	}
}

// Welcome greets a newly registered user.
func (n *Notifier) Welcome(ctx context.Context, to, name string) {
	text := fmt.Sprintf("Greetings %s,\n\nYour identity has been verified. Welcome to ZEROGRID.\n\nStart here: %s/dashboard\n", name, n.appURL)
	n.dispatch(ctx, to, SubjectWelcome, "welcome", n.data(name), text)
}

// IssueCreated tells the owner about a newly logged issue.
func (n *Notifier) IssueCreated(ctx context.Context, to, name string, issue issues.Issue) {
	d := n.data(name)
	d.Issue = issue
	d.TypeLabel = typeLabel(issue.Type)
	text := fmt.Sprintf("Operative %s,\n\nA new security incident has been logged.\n\nType: %s\nTitle: %s\nDetails: %s\n", name, d.TypeLabel, issue.Title, issue.Description)
	n.dispatch(ctx, to, issueSubjectPrefix+issue.Title, "issue_created", d, text)
}

// ProfileUpdated confirms a profile change.
func (n *Notifier) ProfileUpdated(ctx context.Context, to, name string) {
	text := fmt.Sprintf("Operative %s,\n\nYour profile has been updated. If this was not you, secure your account immediately.\n", name)
	n.dispatch(ctx, to, SubjectProfileUpdated, "profile_updated", n.data(name), text)
}

// PasswordReset sends the reset link carrying token.
func (n *Notifier) PasswordReset(ctx context.Context, to, name, token string) {
	d := n.data(name)
	d.ResetURL = n.ResetURL(token)
	text := fmt.Sprintf("Operative %s,\n\nReset your password within 1 hour: %s\n\nIf you did not request this, ignore this message.\n", name, d.ResetURL)
	n.dispatch(ctx, to, SubjectPasswordReset, "password_reset", d, text)
}

// PasswordChanged confirms a completed reset.
func (n *Notifier) PasswordChanged(ctx context.Context, to, name string) {
	text := fmt.Sprintf("Operative %s,\n\nYour password was changed successfully. If you did not do this, contact support immediately.\n", name)
	n.dispatch(ctx, to, SubjectPasswordChanged, "password_changed", n.data(name), text)
}

// ResetURL builds the public reset link for token.
func (n *Notifier) ResetURL(token string) string {
	return n.appURL + "/reset-password?token=" + url.QueryEscape(token)
}

// Wait blocks until in-flight submissions finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context, to, subject, page string, data emailData, text string) {
	logger := n.logger.With(slog.String("email_to", to), slog.String("subject", subject))
	if n.queue == nil {
		logger.Warn("email queue not configured")
		return
	}

	var html bytes.Buffer
	if err := n.tpl.ExecuteTemplate(&html, page, data); err != nil {
		logger.Error("render email", slog.String("template", page), slog.Any("error", err))
		return
	}
	payload := jobs.SendEmailPayload{To: to, Subject: subject, Text: text, HTML: html.String()}

	submitCtx := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(submitCtx, n.timeout)
		defer cancel()
		if _, err := n.queue.EnqueueSendEmail(ctx, payload); err != nil {
			logger.Error("enqueue email", slog.Any("error", err))
		}
	}()
}

func typeLabel(t issues.Type) string {
	if label, ok := issueTypeLabels[t]; ok {
		return label
	}
	return strings.ToUpper(string(t))
}
