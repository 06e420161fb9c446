// internal/billing/service.go
// Stripe Checkout drives upgrades; webhooks are the source of truth
// for subscription state. We never trust the success redirect alone.

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	stripesub "github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrBillingDisabled  = errors.New("billing is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

var subscriptionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "amoria_subscription_events_total",
	Help: "Stripe webhook events processed, by type",
}, []string{"type"})

type Config struct {
	SecretKey       string
	WebhookSecret   string
	PremiumPriceID  string
	PlatinumPriceID string
	SuccessURL      string
	CancelURL       string
}

func (c Config) Enabled() bool {
	return c.SecretKey != "" && c.WebhookSecret != ""
}

type Service interface {
	CreateCheckoutSession(ctx context.Context, userID int64, plan string) (*CheckoutResponse, error)
	HandleWebhook(payload []byte, signature string) error
	GetSubscription(ctx context.Context, userID int64) (*Subscription, error)
	GetEntitlement(ctx context.Context, userID int64) (*Entitlement, error)
}

type service struct {
	repo         Repository
	entitlements *EntitlementService
	cfg          Config
}

func NewService(repo Repository, entitlements *EntitlementService, cfg Config) Service {
	if cfg.Enabled() {
		stripe.Key = cfg.SecretKey
	}
	return &service{repo: repo, entitlements: entitlements, cfg: cfg}
}

func (s *service) CreateCheckoutSession(ctx context.Context, userID int64, plan string) (*CheckoutResponse, error) {
	if !s.cfg.Enabled() {
		return nil, ErrBillingDisabled
	}

	priceID, err := s.priceForPlan(plan)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(strconv.FormatInt(userID, 10)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutResponse{URL: sess.URL}, nil
}

func (s *service) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return ErrInvalidSignature
	}
	subscriptionEvents.WithLabelValues(string(event.Type)).Inc()

	ctx := context.Background()

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, &sess)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return s.handleSubscriptionUpdated(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return s.repo.UpdateStatus(ctx, sub.ID, StatusCanceled, nil)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		if invoice.Subscription != nil {
			return s.repo.UpdateStatus(ctx, invoice.Subscription.ID, StatusPastDue, nil)
		}
		return nil

	default:
		// Unhandled event types are fine; Stripe sends many
		return nil
	}
}

func (s *service) handleCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, err := strconv.ParseInt(sess.ClientReferenceID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad client reference %q: %w", sess.ClientReferenceID, err)
	}

	sub := &Subscription{
		UserID: userID,
		Status: StatusActive,
	}
	if sess.Customer != nil {
		sub.StripeCustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
	}

	// The plan comes from the subscription's price once Stripe tells
	// us about it; at checkout completion we look it up directly.
	plan, periodEnd, err := s.lookupSubscription(sub.StripeSubscriptionID)
	if err != nil {
		return err
	}
	sub.Plan = plan
	sub.CurrentPeriodEnd = periodEnd

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return err
	}

	log.Printf("billing: user %d subscribed to %s", userID, plan)
	return nil
}

func (s *service) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	status := StatusActive
	switch sub.Status {
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		status = StatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		status = StatusCanceled
	}

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0)
		periodEnd = &t
	}

	err := s.repo.UpdateStatus(ctx, sub.ID, status, periodEnd)
	if errors.Is(err, ErrSubscriptionNotFound) {
		// Update may arrive before checkout.session.completed
		log.Printf("billing: update for unknown subscription %s", sub.ID)
		return nil
	}
	return err
}

// lookupSubscription resolves the plan and period end from Stripe
func (s *service) lookupSubscription(stripeSubID string) (string, *time.Time, error) {
	if stripeSubID == "" {
		return "", nil, errors.New("checkout session has no subscription")
	}

	stripeSub, err := stripesub.Get(stripeSubID, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}

	plan := ""
	if len(stripeSub.Items.Data) > 0 && stripeSub.Items.Data[0].Price != nil {
		plan = s.planForPrice(stripeSub.Items.Data[0].Price.ID)
	}
	if plan == "" {
		return "", nil, ErrUnknownPlan
	}

	var periodEnd *time.Time
	if stripeSub.CurrentPeriodEnd > 0 {
		t := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		periodEnd = &t
	}

	return plan, periodEnd, nil
}

func (s *service) GetSubscription(ctx context.Context, userID int64) (*Subscription, error) {
	return s.repo.GetSubscription(ctx, userID)
}

func (s *service) GetEntitlement(ctx context.Context, userID int64) (*Entitlement, error) {
	return s.entitlements.Current(ctx, userID)
}

func (s *service) priceForPlan(plan string) (string, error) {
	switch plan {
	case PlanPremium:
		return s.cfg.PremiumPriceID, nil
	case PlanPlatinum:
		return s.cfg.PlatinumPriceID, nil
	default:
		return "", ErrUnknownPlan
	}
}

func (s *service) planForPrice(priceID string) string {
	switch priceID {
	case s.cfg.PremiumPriceID:
		return PlanPremium
	case s.cfg.PlatinumPriceID:
		return PlanPlatinum
	default:
		return ""
	}
}
