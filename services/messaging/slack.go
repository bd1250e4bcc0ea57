// File: services/messaging/slack.go
package messaging

import (
	"context"
	"fmt"

	"foodbot/models"

	"github.com/slack-go/slack"
)

// SlackMessenger talks to the Slack Web API.
type SlackMessenger struct {
	client *slack.Client
}

func NewSlackMessenger(client *slack.Client) *SlackMessenger {
	return &SlackMessenger{client: client}
}

func (s *SlackMessenger) Send(ctx context.Context, channel, text string) error {
	if _, _, err := s.client.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post message to %s: %w", channel, err)
	}
	return nil
}

func (s *SlackMessenger) SendCard(ctx context.Context, channel string, card models.Card) error {
	attachment := slack.Attachment{
		Fallback:  card.Fallback,
		Pretext:   card.Pretext,
		Title:     card.Title,
		TitleLink: card.TitleLink,
		ImageURL:  card.ImageURL,
	}
	if _, _, err := s.client.PostMessageContext(ctx, channel, slack.MsgOptionAttachments(attachment)); err != nil {
		return fmt.Errorf("post card to %s: %w", channel, err)
	}
	return nil
}

func (s *SlackMessenger) UserName(ctx context.Context, userID string) (string, error) {
	user, err := s.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user %s: %w", userID, err)
	}
	if user == nil || user.Name == "" {
		return "", fmt.Errorf("lookup user %s: empty name", userID)
	}
	return user.Name, nil
}
