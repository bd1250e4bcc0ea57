package handlers

import (
	"net/http"

	"foodbot/models"
	"foodbot/services/messaging"
	"foodbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives Slack outgoing webhooks and answers them through
// the same dispatcher as real-time messages.
type WebhookHandler struct {
	Dispatcher messaging.Dispatcher
}

func NewWebhookHandler(dispatcher messaging.Dispatcher) *WebhookHandler {
	return &WebhookHandler{Dispatcher: dispatcher}
}

// Receive handles POST on the webhook path. Replies go back in the response
// body, which Slack posts publicly into the originating channel.
func (h *WebhookHandler) Receive(c *gin.Context) {
	logger := getLogger(c)

	var payload models.OutgoingWebhook
	if err := c.ShouldBind(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid webhook payload", err.Error())
		return
	}

	msg := models.IncomingMessage{
		User:      payload.UserID,
		Channel:   payload.ChannelID,
		Text:      payload.Text,
		Context:   models.ContextOutgoingWebhook,
		Timestamp: payload.Timestamp,
	}
	utils.MessagesReceived.WithLabelValues(string(msg.Context)).Inc()

	out := messaging.NewWebhookMessenger()
	if err := h.Dispatcher.Dispatch(c.Request.Context(), out, msg); err != nil {
		logger.Error("Failed to handle outgoing webhook",
			zap.String("channel", msg.Channel),
			zap.String("user", msg.User),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to handle webhook", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": out.Text()})
}
