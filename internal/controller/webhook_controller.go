package controller

import (
	"podcast-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(api fiber.Router)
}

type webhookController struct {
	webhookService service.IWebhookService
}

func NewWebhookController(webhookService service.IWebhookService) IWebhookController {
	return &webhookController{webhookService: webhookService}
}

func (c *webhookController) RegisterRoutes(api fiber.Router) {
	api.Post("/webhooks/stripe", c.HandleStripe)
}

// HandleStripe verifies against the raw body, so nothing may parse it first.
// Handler failures after verification are still acknowledged.
func (c *webhookController) HandleStripe(ctx *fiber.Ctx) error {
	payload := append([]byte(nil), ctx.Body()...)
	if err := c.webhookService.HandleStripe(ctx.UserContext(), payload, ctx.Get("Stripe-Signature")); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"received": true})
}
