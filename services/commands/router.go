// File: services/commands/router.go
package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"foodbot/models"
	"foodbot/services/messaging"

	"go.uber.org/zap"
)

// HandlerFunc reacts to one inbound message.
type HandlerFunc func(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error

// Rule fires Handle when any phrase appears as a whole word in a message
// delivered in one of Contexts.
type Rule struct {
	Name     string
	Phrases  []string
	Contexts []models.MessageContext
	Handle   HandlerFunc

	pattern *regexp.Regexp
}

func (r *Rule) compile() {
	quoted := make([]string, len(r.Phrases))
	for i, p := range r.Phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	r.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

func (r *Rule) matches(msg models.IncomingMessage) bool {
	for _, c := range r.Contexts {
		if c == msg.Context {
			return r.pattern.MatchString(msg.Text)
		}
	}
	return false
}

// Dialogue is the part of the conversation script the router drives.
type Dialogue interface {
	Start(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error
	Resume(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) (bool, error)
}

// Router dispatches inbound messages. Its rules are fixed at construction.
type Router struct {
	dialogue  Dialogue
	rules     []Rule
	fallbacks map[models.MessageContext]HandlerFunc
	logger    *zap.Logger
}

func NewRouter(dialogue Dialogue, rules []Rule, fallbacks map[models.MessageContext]HandlerFunc, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiled := make([]Rule, len(rules))
	copy(compiled, rules)
	for i := range compiled {
		compiled[i].compile()
	}
	fb := make(map[models.MessageContext]HandlerFunc, len(fallbacks))
	for k, v := range fallbacks {
		fb[k] = v
	}
	return &Router{
		dialogue:  dialogue,
		rules:     compiled,
		fallbacks: fb,
		logger:    logger,
	}
}

// Dispatch hands msg to, in order: the sender's active dialogue, the first
// matching rule, or the fallback for its context. Anything else is dropped.
func (r *Router) Dispatch(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error {
	if msg.Context != models.ContextOutgoingWebhook {
		handled, err := r.dialogue.Resume(ctx, bot, msg)
		if err != nil {
			return fmt.Errorf("resume dialogue: %w", err)
		}
		if handled {
			return nil
		}
	}

	for i := range r.rules {
		rule := &r.rules[i]
		if rule.matches(msg) {
			r.logger.Debug("Rule matched",
				zap.String("rule", rule.Name),
				zap.String("user", msg.User),
				zap.String("context", string(msg.Context)),
			)
			if err := rule.Handle(ctx, bot, msg); err != nil {
				return fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			return nil
		}
	}

	if fallback, ok := r.fallbacks[msg.Context]; ok {
		if err := fallback(ctx, bot, msg); err != nil {
			return fmt.Errorf("%s fallback: %w", msg.Context, err)
		}
	}
	return nil
}
