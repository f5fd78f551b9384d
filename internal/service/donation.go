package service

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/model"
	"impact-service/internal/payment"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

const coverFeesRate = 0.05

// PaymentProvider is the payment processor gateway used by donations
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error)
	CancelSubscription(ctx context.Context, id string) (string, error)
	UpdateSubscriptionMetadata(ctx context.Context, id string, metadata map[string]string) error
}

// DonateInput is a donor's checkout request
type DonateInput struct {
	Mode      string  `json:"mode"`
	Amount    float64 `json:"amount"`
	DonateAs  string  `json:"donate_as"`
	CoverFees bool    `json:"cover_fees"`
	TenantID  string  `json:"tenant_uuid"`
}

// CancelResult reports a cancelled recurring donation together with the
// tenant details shown on the confirmation page.
type CancelResult struct {
	Status        string `json:"status"`
	TenantName    string `json:"tenant_name"`
	TenantWebsite string `json:"tenant_website"`
}

// DonationService runs the donation checkout flow and applies the
// processor's webhook notifications.
type DonationService struct {
	donations      repository.DonationRepository
	tenants        repository.TenantRepository
	provider       PaymentProvider
	frontendDomain string
}

func NewDonationService(donations repository.DonationRepository, tenants repository.TenantRepository, provider PaymentProvider, frontendDomain string) *DonationService {
	return &DonationService{
		donations:      donations,
		tenants:        tenants,
		provider:       provider,
		frontendDomain: frontendDomain,
	}
}

// CreateCheckout opens a checkout session for the tenant and records the
// donation in the init state, keyed by the session's client reference.
// The fee surcharge only affects the charged amount; the recorded
// donation keeps the amount the donor chose.
func (s *DonationService) CreateCheckout(ctx context.Context, input DonateInput) (string, error) {
	tenantID, err := uuid.Parse(input.TenantID)
	if err != nil {
		return "", fmt.Errorf("%w: bad tenant_uuid", ErrValidation)
	}
	if input.Amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	mode, interval := "", ""
	switch input.Mode {
	case "payment":
		mode = "payment"
	case "monthly":
		mode, interval = "subscription", "month"
	case "annually":
		mode, interval = "subscription", "year"
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, input.Mode)
	}

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return "", translateRepoErr(err)
	}

	charged := input.Amount
	if input.CoverFees {
		charged += input.Amount * coverFeesRate
	}

	returnParams := url.Values{}
	returnParams.Set("tenant_name", tenant.Name)
	returnParams.Set("tenant_website", tenant.Website)
	returnParams.Set("tenant_support_email", tenant.SupportEmail)
	returnURL := s.frontendDomain + "/donate/return?session_id={CHECKOUT_SESSION_ID}&" + returnParams.Encode()

	clientReferenceID := uuid.New()
	metadata := map[string]string{
		"tenant_name": tenant.Name,
		"tenant_uuid": tenant.UUID.String(),
	}
	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutParams{
		ClientReferenceID: clientReferenceID.String(),
		Mode:              mode,
		Interval:          interval,
		UnitAmount:        int64(math.Round(charged * 100)),
		ProductName:       fmt.Sprintf("Donate $%g", charged),
		ReturnURL:         returnURL,
		Metadata:          metadata,
	})
	if err != nil {
		return "", err
	}

	donation := &model.Donation{
		UUID:       clientReferenceID,
		Mode:       mode,
		Amount:     input.Amount,
		DonateAs:   input.DonateAs,
		CoverFees:  input.CoverFees,
		Status:     "init",
		TenantUUID: tenantID,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return "", err
	}

	prometheus.DonationCounter.WithLabelValues(mode).Inc()
	logger.FromContext(ctx).Info("donation checkout created",
		zap.String("donation_id", clientReferenceID.String()),
		zap.String("mode", mode),
		zap.String("tenant_id", tenantID.String()))
	return session.ClientSecret, nil
}

// GetSession returns the processor's state of a checkout session
func (s *DonationService) GetSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", ErrValidation)
	}
	return s.provider.GetCheckoutSession(ctx, sessionID)
}

// CancelSubscription stops a recurring donation
func (s *DonationService) CancelSubscription(ctx context.Context, subscriptionID string) (*CancelResult, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription_id is required", ErrValidation)
	}
	status, err := s.provider.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	donation, err := s.donations.FindBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return &CancelResult{
		Status:        status,
		TenantName:    donation.Tenant.Name,
		TenantWebsite: donation.Tenant.Website,
	}, nil
}

// HandleWebhookEvent applies a verified processor notification. Events
// the flow does not recognize are logged and acknowledged so the
// processor stops retrying them.
func (s *DonationService) HandleWebhookEvent(ctx context.Context, event *payment.WebhookEvent) error {
	log := logger.FromContext(ctx).With(zap.String("event_type", event.Type))
	prometheus.WebhookEventCounter.WithLabelValues(event.Type).Inc()

	switch event.Type {
	case payment.EventCheckoutCompleted:
		id, err := uuid.Parse(event.ClientReferenceID)
		if err != nil {
			return fmt.Errorf("%w: bad client reference %q", ErrValidation, event.ClientReferenceID)
		}
		if err := s.donations.UpdateCheckout(ctx, id, event.Status, event.Subscription); err != nil {
			return err
		}
		if event.Subscription != "" {
			// Later subscription events only carry the subscription ID,
			// so the tenant attribution has to travel on its metadata.
			if err := s.provider.UpdateSubscriptionMetadata(ctx, event.Subscription, event.Metadata); err != nil {
				return err
			}
		}
		log.Info("donation checkout completed",
			zap.String("donation_id", event.ClientReferenceID),
			zap.String("status", event.Status))

	case payment.EventPaymentSucceeded, payment.EventSubscriptionDeleted, payment.EventPaymentFailed:
		if event.Subscription == "" {
			return nil
		}
		if err := s.donations.UpdateStatusBySubscription(ctx, event.Subscription, event.Status); err != nil {
			return err
		}
		log.Info("donation status updated",
			zap.String("subscription", event.Subscription),
			zap.String("status", event.Status))

	default:
		log.Info("ignored webhook event type")
	}
	return nil
}
