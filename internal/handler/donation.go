package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"impact-service/internal/payment"
	"impact-service/internal/service"
	"impact-service/pkg/logger"
)

// WebhookParser verifies and flattens payment processor notifications
type WebhookParser interface {
	ParseWebhookEvent(payload []byte, signature string) (*payment.WebhookEvent, error)
}

// DonationHandler serves the public donation flow
type DonationHandler struct {
	donations *service.DonationService
	webhooks  WebhookParser
}

func NewDonationHandler(donations *service.DonationService, webhooks WebhookParser) *DonationHandler {
	return &DonationHandler{donations: donations, webhooks: webhooks}
}

// Donate handles opening a checkout session for a donor
func (h *DonationHandler) Donate(c echo.Context) error {
	var req service.DonateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	clientSecret, err := h.donations.CreateCheckout(requestContext(c), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": clientSecret})
}

// Return handles the post-checkout return page lookup
func (h *DonationHandler) Return(c echo.Context) error {
	session, err := h.donations.GetSession(requestContext(c), c.QueryParam("session_id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Cancel handles stopping a recurring donation
func (h *DonationHandler) Cancel(c echo.Context) error {
	result, err := h.donations.CancelSubscription(requestContext(c), c.QueryParam("subscription_id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Webhook handles payment processor notifications. Signature failures
// are rejected; recognized events are applied and everything else is
// acknowledged so the processor stops retrying.
func (h *DonationHandler) Webhook(c echo.Context) error {
	log := logger.FromEcho(c)

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	event, err := h.webhooks.ParseWebhookEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn("Rejected webhook payload", zap.Error(err))
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.donations.HandleWebhookEvent(requestContext(c), event); err != nil {
		log.Error("Webhook event processing failed",
			zap.String("event_type", event.Type),
			zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}
