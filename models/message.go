package models

// MessageContext tells how an inbound message reached the bot.
type MessageContext string

const (
	ContextDirectMessage   MessageContext = "direct_message"
	ContextDirectMention   MessageContext = "direct_mention"
	ContextMention         MessageContext = "mention"
	ContextAmbient         MessageContext = "ambient"
	ContextOutgoingWebhook MessageContext = "outgoing_webhook"
)

// IncomingMessage is a chat message normalized from either ingress (RTM or webhook).
type IncomingMessage struct {
	User      string         `json:"user"`
	Channel   string         `json:"channel"`
	Text      string         `json:"text"` // mention prefix already stripped
	Context   MessageContext `json:"context"`
	Timestamp string         `json:"ts,omitempty"` // Slack message ts
}

// OutgoingWebhook is the payload Slack posts to an outgoing-webhook URL.
type OutgoingWebhook struct {
	Token       string `form:"token" json:"token"`
	TeamID      string `form:"team_id" json:"team_id"`
	ChannelID   string `form:"channel_id" json:"channel_id"`
	ChannelName string `form:"channel_name" json:"channel_name"`
	Timestamp   string `form:"timestamp" json:"timestamp"`
	UserID      string `form:"user_id" json:"user_id"`
	UserName    string `form:"user_name" json:"user_name"`
	Text        string `form:"text" json:"text"`
	TriggerWord string `form:"trigger_word" json:"trigger_word"`
}

// Card is a single message attachment.
type Card struct {
	Fallback  string `json:"fallback"`
	Pretext   string `json:"pretext,omitempty"`
	Title     string `json:"title,omitempty"`
	TitleLink string `json:"title_link,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}
