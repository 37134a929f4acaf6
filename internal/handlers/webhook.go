package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler acknowledges Shopify compliance webhooks. Signature
// verification happens in the shopify middleware before this runs.
type WebhookHandler struct{}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{}
}

// HandleShopifyWebhook is the unified endpoint for all Shopify webhook
// topics (customers/data_request, customers/redact, shop/redact). No
// customer data is stored, so every topic is acknowledged without action.
//
// POST /api/webhooks/shopify
func (h *WebhookHandler) HandleShopifyWebhook(c *fiber.Ctx) error {
	topic := c.Get("X-Shopify-Topic")
	if topic == "" {
		topic = "unknown"
	}
	log.Printf("[Webhook] Shopify webhook received: %s", topic)

	return c.JSON(fiber.Map{})
}
