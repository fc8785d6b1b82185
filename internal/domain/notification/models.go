package notification

import (
	"errors"
	"strings"
	"time"
)

// Severities. Presentation only, they do not change queue behaviour.
const (
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
	SeverityInfo    = "info"
)

// DefaultTTL is how long a notification stays queued unless dismissed.
const DefaultTTL = 5 * time.Second

var validSeverities = map[string]struct{}{
	SeveritySuccess: {},
	SeverityWarning: {},
	SeverityError:   {},
	SeverityInfo:    {},
}

// Domain errors
var (
	ErrNotFound        = errors.New("notification not found")
	ErrInvalidSeverity = errors.New("severity must be one of success, warning, error, info")
	ErrEmptyMessage    = errors.New("notification message is required")
	ErrClosed          = errors.New("notification queue closed")
)

// Notification is a transient message shown to one owner
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EnqueueParams contains the parameters of a new notification
type EnqueueParams struct {
	Owner    string
	Message  string
	Severity string
}

func (p EnqueueParams) Validate() error {
	if p.Owner == "" {
		return errors.New("owner is required")
	}
	if strings.TrimSpace(p.Message) == "" {
		return ErrEmptyMessage
	}
	if !IsValidSeverity(p.Severity) {
		return ErrInvalidSeverity
	}
	return nil
}

func IsValidSeverity(s string) bool {
	_, ok := validSeverities[s]
	return ok
}
