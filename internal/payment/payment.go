// Package payment wraps the payment processor behind a small gateway
// used by the donation flow.
package payment

// CheckoutParams describe a checkout session to create. Amounts are in
// cents; Interval is empty for one-time payments.
type CheckoutParams struct {
	ClientReferenceID string
	Mode              string
	Interval          string
	UnitAmount        int64
	ProductName       string
	ReturnURL         string
	Metadata          map[string]string
}

// CheckoutSession is the processor's view of a checkout session
type CheckoutSession struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret,omitempty"`
	Status        string `json:"status"`
	Mode          string `json:"mode"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	Subscription  string `json:"subscription,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// WebhookEvent is a verified processor notification, flattened to the
// fields the donation flow consumes.
type WebhookEvent struct {
	Type              string
	ClientReferenceID string
	Status            string
	Subscription      string
	CustomerEmail     string
	Metadata          map[string]string
}

// Webhook event types the donation flow acts on
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)
