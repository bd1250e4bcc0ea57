package commands

import (
	"context"

	"foodbot/models"
	"foodbot/services/messaging"

	"go.uber.org/zap"
)

const (
	GreetingGeneric = "Hello there!"
	HelpText        = "If you type hungry, I can give you food recommendations."
	MentionReply    = "sup"
	DirectReply     = "yeet"
	WebhookReply    = "yeah yeah"
)

// NewDefaultRouter wires the bot's fixed vocabulary.
func NewDefaultRouter(dialogue Dialogue, logger *zap.Logger) *Router {
	rules := []Rule{
		{
			Name:     "greeting",
			Phrases:  []string{"hello", "hi", "howdy"},
			Contexts: []models.MessageContext{models.ContextDirectMessage},
			Handle:   greet,
		},
		{
			Name:     "help",
			Phrases:  []string{"help"},
			Contexts: []models.MessageContext{models.ContextDirectMention},
			Handle:   reply(HelpText),
		},
		{
			Name:     "hungry",
			Phrases:  []string{"hungry"},
			Contexts: []models.MessageContext{models.ContextAmbient, models.ContextDirectMention, models.ContextDirectMessage},
			Handle:   dialogue.Start,
		},
	}
	fallbacks := map[models.MessageContext]HandlerFunc{
		models.ContextDirectMention:   reply(MentionReply),
		models.ContextDirectMessage:   reply(DirectReply),
		models.ContextOutgoingWebhook: reply(WebhookReply),
	}
	return NewRouter(dialogue, rules, fallbacks, logger)
}

// greet personalizes the greeting when the sender's name resolves.
func greet(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error {
	name, err := bot.UserName(ctx, msg.User)
	if err != nil || name == "" {
		return bot.Send(ctx, msg.Channel, GreetingGeneric)
	}
	return bot.Send(ctx, msg.Channel, "Hello, "+name+"!")
}

func reply(text string) HandlerFunc {
	return func(ctx context.Context, bot messaging.Messenger, msg models.IncomingMessage) error {
		return bot.Send(ctx, msg.Channel, text)
	}
}
