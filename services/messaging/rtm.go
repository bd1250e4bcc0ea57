// File: services/messaging/rtm.go
package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"foodbot/models"
	"foodbot/utils"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

var ErrInvalidAuth = errors.New("slack rejected the bot token")

// Listener holds the real-time connection and feeds every message event, one
// at a time, to the dispatcher.
type Listener struct {
	client     *slack.Client
	messenger  Messenger
	dispatcher Dispatcher
	logger     *zap.Logger

	botID   string
	mention *regexp.Regexp
}

func NewListener(client *slack.Client, messenger Messenger, dispatcher Dispatcher, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		client:     client,
		messenger:  messenger,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run authenticates and then consumes RTM events until ctx is cancelled.
// Authentication failures are returned; callers treat them as fatal.
func (l *Listener) Run(ctx context.Context) error {
	auth, err := l.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	l.setBotID(auth.UserID)
	l.logger.Info("Slack authenticated",
		zap.String("bot_user", auth.User),
		zap.String("bot_id", auth.UserID),
		zap.String("team", auth.Team),
	)

	rtm := l.client.NewRTM()
	go rtm.ManageConnection()
	defer func() {
		_ = rtm.Disconnect()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-rtm.IncomingEvents:
			if !ok {
				return nil
			}
			if err := l.handleEvent(ctx, ev); err != nil {
				return err
			}
		}
	}
}

// handleEvent processes one RTM event. Only an error that must end the
// listener is returned.
func (l *Listener) handleEvent(ctx context.Context, ev slack.RTMEvent) error {
	switch data := ev.Data.(type) {
	case *slack.ConnectedEvent:
		l.logger.Info("RTM connected", zap.Int("connection_count", data.ConnectionCount))
	case *slack.MessageEvent:
		l.handleMessage(ctx, data)
	case *slack.InvalidAuthEvent:
		return ErrInvalidAuth
	case *slack.RTMError:
		l.logger.Warn("RTM error", zap.Int("code", data.Code), zap.String("msg", data.Msg))
	case *slack.ConnectionErrorEvent:
		l.logger.Warn("RTM connection error", zap.Int("attempt", data.Attempt), zap.Error(data.ErrorObj))
	}
	return nil
}

func (l *Listener) setBotID(id string) {
	l.botID = id
	l.mention = regexp.MustCompile(`<@` + regexp.QuoteMeta(id) + `(\|[^>]*)?>`)
}

func (l *Listener) handleMessage(ctx context.Context, ev *slack.MessageEvent) {
	msg, ok := l.classify(ev)
	if !ok {
		return
	}
	utils.MessagesReceived.WithLabelValues(string(msg.Context)).Inc()

	if err := l.dispatcher.Dispatch(ctx, l.messenger, msg); err != nil {
		l.logger.Error("Failed to handle message",
			zap.String("user", msg.User),
			zap.String("channel", msg.Channel),
			zap.String("context", string(msg.Context)),
			zap.Error(err),
		)
	}
}

// classify normalizes a message event and tags its delivery context. Messages
// from bots, edits, deletions and other subtypes are skipped.
func (l *Listener) classify(ev *slack.MessageEvent) (models.IncomingMessage, bool) {
	if ev.SubType != "" || ev.BotID != "" || ev.User == "" || ev.User == l.botID {
		return models.IncomingMessage{}, false
	}

	msg := models.IncomingMessage{
		User:      ev.User,
		Channel:   ev.Channel,
		Text:      ev.Text,
		Timestamp: ev.Timestamp,
	}

	text := strings.TrimSpace(ev.Text)
	loc := l.mention.FindStringIndex(text)
	leading := loc != nil && loc[0] == 0
	if leading {
		text = strings.TrimLeft(text[loc[1]:], ": \t\n")
	}

	switch {
	case strings.HasPrefix(ev.Channel, "D"):
		msg.Context = models.ContextDirectMessage
		msg.Text = text
	case leading:
		msg.Context = models.ContextDirectMention
		msg.Text = text
	case loc != nil:
		msg.Context = models.ContextMention
	default:
		msg.Context = models.ContextAmbient
	}
	return msg, true
}
