package messaging

import (
	"context"
	"strings"
	"sync"

	"foodbot/models"
)

// WebhookMessenger buffers replies to an outgoing-webhook request so they can be
// returned in the HTTP response, which Slack posts publicly into the channel.
type WebhookMessenger struct {
	mu      sync.Mutex
	replies []string
}

func NewWebhookMessenger() *WebhookMessenger {
	return &WebhookMessenger{}
}

func (w *WebhookMessenger) Send(_ context.Context, _ string, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replies = append(w.replies, text)
	return nil
}

// SendCard degrades to the card's fallback text; webhook responses are plain text.
func (w *WebhookMessenger) SendCard(ctx context.Context, channel string, card models.Card) error {
	text := card.Title
	if text == "" {
		text = card.Fallback
	}
	return w.Send(ctx, channel, text)
}

func (w *WebhookMessenger) UserName(context.Context, string) (string, error) {
	return "", ErrUserLookupUnsupported
}

// Text joins every buffered reply, one per line.
func (w *WebhookMessenger) Text() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.replies, "\n")
}
