package domain

import (
	"strings"

	apperrors "github.com/cityfeedback/feedback-service/pkg/util/errorutil"
)

// Status enumerates lifecycle states for feedback.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "INPROGRESS"
	StatusDone       Status = "DONE"
	StatusClosed     Status = "CLOSED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusOpen,
	StatusInProgress,
	StatusDone,
	StatusClosed,
}

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
	}
	return status, nil
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// allowsPublication reports whether feedback in status s may be visible to the public.
func (s Status) allowsPublication() bool {
	return s != StatusPending && s != StatusClosed
}
