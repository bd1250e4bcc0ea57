// File: foodbot/handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// HTTP shell
	IndexHandler  gin.HandlerFunc
	HealthHandler gin.HandlerFunc

	// Slack outgoing webhooks
	WebhookHandler gin.HandlerFunc
}
