package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskPurgeResetTokens removes expired password reset tokens.
	TaskPurgeResetTokens = "maintenance:purge_reset_tokens"
	// TaskPurgeRateLimits removes rate-limit windows that have already reset.
	TaskPurgeRateLimits = "maintenance:purge_rate_limits"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// PurgeRateLimitsPayload configures the rate-limit sweep. Windows that reset
// more than GraceMinutes ago are removed.
type PurgeRateLimitsPayload struct {
	GraceMinutes int `json:"grace_minutes"`
}

// NewPurgeResetTokensTask builds the reset-token sweep task.
func NewPurgeResetTokensTask() *asynq.Task {
	return asynq.NewTask(TaskPurgeResetTokens, nil)
}

// NewPurgeRateLimitsTask builds the rate-limit sweep task.
func NewPurgeRateLimitsTask(graceMinutes int) (*asynq.Task, error) {
	data, err := json.Marshal(PurgeRateLimitsPayload{GraceMinutes: graceMinutes})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPurgeRateLimits, data), nil
}
