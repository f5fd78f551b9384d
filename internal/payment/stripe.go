package payment

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"

	"impact-service/pkg/config"
)

// StripeProvider implements the donation payment gateway on Stripe
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider configures the global Stripe client and returns a provider
func NewStripeProvider(cfg *config.StripeConfig) *StripeProvider {
	stripe.Key = cfg.SecretKey
	return &StripeProvider{webhookSecret: cfg.WebhookSecret}
}

// CreateCheckoutSession opens an embedded checkout session
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		UnitAmount: stripe.Int64(params.UnitAmount),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(params.ProductName),
		},
	}
	if params.Interval != "" {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(params.Interval),
		}
	}

	sessionParams := &stripe.CheckoutSessionParams{
		ClientReferenceID: stripe.String(params.ClientReferenceID),
		UIMode:            stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:              stripe.String(params.Mode),
		ReturnURL:         stripe.String(params.ReturnURL),
		AutomaticTax:      &stripe.CheckoutSessionAutomaticTaxParams{Enabled: stripe.Bool(true)},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
	}
	sessionParams.Context = ctx
	for k, v := range params.Metadata {
		sessionParams.AddMetadata(k, v)
	}
	if params.Mode == string(stripe.CheckoutSessionModePayment) {
		sessionParams.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: params.Metadata,
		}
	}

	s, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return checkoutSessionFromStripe(s), nil
}

// GetCheckoutSession retrieves a checkout session by ID
func (p *StripeProvider) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return checkoutSessionFromStripe(s), nil
}

// CancelSubscription cancels a recurring donation and returns the
// resulting subscription status.
func (p *StripeProvider) CancelSubscription(ctx context.Context, id string) (string, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	sub, err := subscription.Cancel(id, params)
	if err != nil {
		return "", fmt.Errorf("cancel subscription: %w", err)
	}
	return string(sub.Status), nil
}

// UpdateSubscriptionMetadata copies checkout metadata onto a subscription
// so later webhook events carry the tenant attribution.
func (p *StripeProvider) UpdateSubscriptionMetadata(ctx context.Context, id string, metadata map[string]string) error {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if _, err := subscription.Update(id, params); err != nil {
		return fmt.Errorf("update subscription metadata: %w", err)
	}
	return nil
}

func checkoutSessionFromStripe(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:           s.ID,
		ClientSecret: s.ClientSecret,
		Status:       string(s.Status),
		Mode:         string(s.Mode),
		AmountTotal:  s.AmountTotal,
		Currency:     string(s.Currency),
	}
	if s.Subscription != nil {
		out.Subscription = s.Subscription.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

// ParseWebhookEvent verifies the payload signature and flattens the event
func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	parsed := &WebhookEvent{Type: string(event.Type)}
	switch parsed.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		parsed.ClientReferenceID = s.ClientReferenceID
		parsed.Status = string(s.Status)
		parsed.Metadata = s.Metadata
		if s.Subscription != nil {
			parsed.Subscription = s.Subscription.ID
		}
		if s.CustomerDetails != nil {
			parsed.CustomerEmail = s.CustomerDetails.Email
		}
	case EventPaymentSucceeded, EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		parsed.Status = string(inv.Status)
		if inv.Subscription != nil {
			parsed.Subscription = inv.Subscription.ID
		}
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		parsed.Status = string(sub.Status)
		parsed.Subscription = sub.ID
	}
	return parsed, nil
}
