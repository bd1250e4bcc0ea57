package messaging

import (
	"context"
	"errors"

	"foodbot/models"
)

// ErrUserLookupUnsupported is returned by messengers that cannot resolve user names.
var ErrUserLookupUnsupported = errors.New("user lookup not supported")

// Messenger is everything the bot needs from the chat platform.
type Messenger interface {
	// Send posts plain text into a conversation.
	Send(ctx context.Context, channel, text string) error
	// SendCard posts a single attachment card into a conversation.
	SendCard(ctx context.Context, channel string, card models.Card) error
	// UserName resolves a user ID to a display name.
	UserName(ctx context.Context, userID string) (string, error)
}

// Dispatcher receives every normalized inbound message together with the
// messenger that should carry its replies.
type Dispatcher interface {
	Dispatch(ctx context.Context, bot Messenger, msg models.IncomingMessage) error
}
