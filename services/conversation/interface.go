package conversation

import (
	"context"
	"regexp"

	"foodbot/models"
	"foodbot/services/messaging"
)

// SessionStore keeps at most one dialogue per (user, channel).
type SessionStore interface {
	// Get returns nil, nil when no dialogue is active.
	Get(ctx context.Context, user, channel string) (*models.Session, error)
	Set(ctx context.Context, sess *models.Session) error
	Clear(ctx context.Context, user, channel string) error
}

// StepFunc advances a session with the user's reply.
type StepFunc func(ctx context.Context, bot messaging.Messenger, sess *models.Session, reply string) error

// Branch routes a reply matching Pattern to Handle.
type Branch struct {
	Pattern *regexp.Regexp
	Handle  StepFunc
}
