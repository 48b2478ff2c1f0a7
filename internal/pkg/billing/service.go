package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ManuelReschke/StripeSync/app/models"
	"github.com/ManuelReschke/StripeSync/internal/pkg/stripe"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutConfig carries the redirect targets for checkout sessions. Both
// values come from configuration; there are no baked-in URLs.
type CheckoutConfig struct {
	SuccessURL string
	CancelURL  string
}

type eventHandler func(ctx context.Context, object json.RawMessage) error

// Service reconciles Stripe webhook events into local records and builds
// outbound checkout/portal sessions.
type Service struct {
	repo     Repository
	client   *stripe.Client
	checkout CheckoutConfig
	handlers map[string]eventHandler
}

// NewService creates a billing service from an injected repository and API
// client. The event dispatch table is fixed here; anything not listed is an
// unhandled event type.
func NewService(repo Repository, client *stripe.Client, checkout CheckoutConfig) *Service {
	s := &Service{repo: repo, client: client, checkout: checkout}
	s.handlers = map[string]eventHandler{
		stripe.EventProductCreated:      s.handleProductEvent,
		stripe.EventProductUpdated:      s.handleProductEvent,
		stripe.EventPriceCreated:        s.handlePriceEvent,
		stripe.EventPriceUpdated:        s.handlePriceEvent,
		stripe.EventSubscriptionCreated: s.handleSubscriptionCreated,
		stripe.EventSubscriptionUpdated: s.handleSubscriptionChanged,
		stripe.EventSubscriptionDeleted: s.handleSubscriptionChanged,
		stripe.EventCheckoutCompleted:   s.handleCheckoutCompleted,
	}
	return s
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, client *stripe.Client, checkout CheckoutConfig) *Service {
	return NewService(NewRepository(db), client, checkout)
}

// EntityForEventType names the entity a handled event type maps onto, for
// client-facing error messages.
func EntityForEventType(eventType string) string {
	switch eventType {
	case stripe.EventProductCreated, stripe.EventProductUpdated:
		return "product"
	case stripe.EventPriceCreated, stripe.EventPriceUpdated:
		return "price"
	case stripe.EventSubscriptionCreated, stripe.EventSubscriptionUpdated, stripe.EventSubscriptionDeleted:
		return "subscription"
	case stripe.EventCheckoutCompleted:
		return "checkout session"
	default:
		return "event"
	}
}

// ProcessEvent dispatches a verified webhook event to its handler. Unknown
// event types fail with ErrUnhandledEventType.
func (s *Service) ProcessEvent(ctx context.Context, ev *stripe.Event) error {
	handler, ok := s.handlers[ev.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnhandledEventType, ev.Type)
	}
	return handler(ctx, ev.Data.Object)
}

func (s *Service) handleProductEvent(ctx context.Context, object json.RawMessage) error {
	_ = ctx
	var obj stripe.Product
	if err := json.Unmarshal(object, &obj); err != nil {
		return fmt.Errorf("decode product payload: %w", err)
	}

	rec, err := s.repo.FindProductByProductID(obj.ID)
	if err != nil {
		return fmt.Errorf("lookup product %s: %w", obj.ID, err)
	}
	if rec == nil {
		rec = &models.Product{}
	}
	applyProduct(rec, &obj)
	if err := s.repo.SaveProduct(rec); err != nil {
		return fmt.Errorf("save product %s: %w", obj.ID, err)
	}
	return nil
}

func (s *Service) handlePriceEvent(ctx context.Context, object json.RawMessage) error {
	_ = ctx
	var obj stripe.Price
	if err := json.Unmarshal(object, &obj); err != nil {
		return fmt.Errorf("decode price payload: %w", err)
	}

	rec, err := s.repo.FindPriceByPriceID(obj.ID)
	if err != nil {
		return fmt.Errorf("lookup price %s: %w", obj.ID, err)
	}
	if rec == nil {
		rec = &models.Price{}
	}
	applyPrice(rec, &obj)
	if err := s.repo.SavePrice(rec); err != nil {
		return fmt.Errorf("save price %s: %w", obj.ID, err)
	}
	return nil
}

func (s *Service) handleSubscriptionCreated(ctx context.Context, object json.RawMessage) error {
	return s.upsertSubscription(ctx, object, true)
}

func (s *Service) handleSubscriptionChanged(ctx context.Context, object json.RawMessage) error {
	return s.upsertSubscription(ctx, object, false)
}

func (s *Service) upsertSubscription(ctx context.Context, object json.RawMessage, created bool) error {
	_ = ctx
	var obj stripe.Subscription
	if err := json.Unmarshal(object, &obj); err != nil {
		return fmt.Errorf("decode subscription payload: %w", err)
	}

	// The owning user is always resolved through the customer record, never
	// taken from the event itself.
	customer, err := s.repo.FindCustomerByStripeID(obj.Customer)
	if err != nil {
		return fmt.Errorf("lookup customer %s: %w", obj.Customer, err)
	}
	if customer == nil {
		return fmt.Errorf("%w: %s", ErrNoCustomerForSubscription, obj.Customer)
	}

	rec, err := s.repo.FindSubscriptionBySubscriptionID(obj.ID)
	if err != nil {
		return fmt.Errorf("lookup subscription %s: %w", obj.ID, err)
	}
	if rec == nil {
		rec = &models.Subscription{}
	}
	applySubscription(rec, &obj, customer.UserID)
	if err := s.repo.SaveSubscription(rec); err != nil {
		return fmt.Errorf("save subscription %s: %w", obj.ID, err)
	}

	if created {
		address := paymentMethodAddress(obj.DefaultPaymentMethod)
		method := paymentMethodType(obj.DefaultPaymentMethod)
		if err := s.updateUserBillingInfo(customer.UserID, address, method); err != nil {
			// The subscription is already persisted; the partial completion
			// still fails the event so the sender retries.
			log.Printf("subscription %s saved but user %d billing info update failed: %v", obj.ID, customer.UserID, err)
			return fmt.Errorf("update billing info for user %d: %w", customer.UserID, err)
		}
	}
	return nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, object json.RawMessage) error {
	_ = ctx
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(object, &sess); err != nil {
		return fmt.Errorf("decode checkout session payload: %w", err)
	}
	if sess.Mode != stripe.SessionModeSubscription {
		return nil
	}

	customer, err := s.repo.FindCustomerByStripeID(sess.Customer)
	if err != nil {
		return fmt.Errorf("lookup customer %s: %w", sess.Customer, err)
	}
	if customer == nil {
		return fmt.Errorf("%w: %s", ErrNoCustomerForSubscription, sess.Customer)
	}

	rec, err := s.repo.FindSubscriptionBySubscriptionID(sess.Subscription)
	if err != nil {
		return fmt.Errorf("lookup subscription %s: %w", sess.Subscription, err)
	}
	if rec == nil {
		rec = &models.Subscription{}
	}
	applySessionSubscription(rec, &sess, customer.UserID)
	if err := s.repo.SaveSubscription(rec); err != nil {
		return fmt.Errorf("save subscription %s: %w", sess.Subscription, err)
	}

	// session.subscription is an id string here, so there is no payment
	// method to read; only the address from customer_details is available.
	var address string
	if sess.CustomerDetails != nil {
		address = formatAddress(sess.CustomerDetails.Address)
	}
	if err := s.updateUserBillingInfo(customer.UserID, address, ""); err != nil {
		log.Printf("checkout session %s processed but user %d billing info update failed: %v", sess.ID, customer.UserID, err)
		return fmt.Errorf("update billing info for user %d: %w", customer.UserID, err)
	}
	return nil
}

func (s *Service) updateUserBillingInfo(userID uint, address, method string) error {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.BillingAddress = address
	user.PaymentMethod = method
	return s.repo.SaveUser(user)
}

// CheckoutInput is the client-supplied part of a checkout session request.
type CheckoutInput struct {
	PriceID   string
	PriceType string
	Quantity  int
}

// EnsureCustomer resolves the Stripe customer id for a user, creating the
// remote customer and the local record on first use. Concurrent first-time
// checkouts are caught by the unique index on stripe_customer_id.
func (s *Service) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	existing, err := s.repo.FindCustomerByUserID(user.ID)
	if err != nil {
		return "", fmt.Errorf("lookup customer for user %d: %w", user.ID, err)
	}
	if existing != nil {
		return existing.StripeCustomerID, nil
	}

	remote, err := s.client.CreateCustomer(ctx, user.Email, user.Name, strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.repo.SaveCustomer(&models.Customer{StripeCustomerID: remote.ID, UserID: user.ID}); err != nil {
		return "", fmt.Errorf("save customer record: %w", err)
	}
	return remote.ID, nil
}

// CreateCheckoutSession validates the requested price type, resolves the
// customer and submits the session request, relaying the raw response.
func (s *Service) CreateCheckoutSession(ctx context.Context, user *models.User, in CheckoutInput) (json.RawMessage, error) {
	mode, err := sessionModeForPriceType(in.PriceType)
	if err != nil {
		return nil, err
	}

	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	params := stripe.FormValues{}.
		Add("customer", customerID).
		Add("mode", mode).
		Add("client_reference_id", uuid.NewString()).
		Add("billing_address_collection", "required").
		Add("customer_update", stripe.FormValues{}.Add("address", "auto")).
		Add("allow_promotion_codes", true).
		Add("success_url", s.checkout.SuccessURL).
		Add("cancel_url", s.checkout.CancelURL).
		Add("line_items", []stripe.FormValues{
			stripe.FormValues{}.Add("price", in.PriceID).Add("quantity", quantity),
		})

	return s.client.CreateCheckoutSession(ctx, params)
}

// CreatePortalSession opens a billing portal session for the user's existing
// customer record. A missing record is ErrNoCustomer.
func (s *Service) CreatePortalSession(ctx context.Context, userID uint) (json.RawMessage, error) {
	customer, err := s.repo.FindCustomerByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer for user %d: %w", userID, err)
	}
	if customer == nil {
		return nil, ErrNoCustomer
	}
	return s.client.CreatePortalSession(ctx, customer.StripeCustomerID)
}

func sessionModeForPriceType(priceType string) (string, error) {
	switch priceType {
	case models.PriceTypeRecurring:
		return stripe.SessionModeSubscription, nil
	case models.PriceTypeOneTime:
		return stripe.SessionModePayment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriceType, priceType)
	}
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without
// an id are keyed by a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, eventID, eventType string, payload []byte, signatureValid bool) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256(payload)
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		EventID:        id,
		EventType:      strings.TrimSpace(eventType),
		PayloadJSON:    string(payload),
		SignatureValid: signatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// EventAlreadyProcessed reports whether a stored webhook event completed
// successfully. Redeliveries of an event that never ran to completion must be
// reprocessed, not acknowledged as duplicates, or the sender's retries would
// be swallowed.
func EventAlreadyProcessed(event *models.BillingWebhookEvent) bool {
	return event != nil && event.ProcessedAt != nil && event.ProcessingError == ""
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
