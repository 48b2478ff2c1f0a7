package stripe

import (
	"encoding/json"
	"errors"
	"strings"
)

// Event type tags handled by the reconciler.
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventPriceCreated        = "price.created"
	EventPriceUpdated        = "price.updated"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// Checkout session modes.
const (
	SessionModeSubscription = "subscription"
	SessionModePayment      = "payment"
)

// Event is the webhook envelope: a type tag plus the affected object.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the entity payload. The shape depends on the event type,
// so it stays raw until the dispatching handler decodes it.
type EventData struct {
	Object json.RawMessage `json:"object"`
}

// ParseEvent decodes a webhook envelope from the raw request body.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.Type) == "" {
		return nil, errors.New("webhook payload missing event type")
	}
	return &ev, nil
}

// Product is the product payload of product.* events.
type Product struct {
	ID          string            `json:"id"`
	Active      bool              `json:"active"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// Recurring is present on subscription-type prices only.
type Recurring struct {
	Interval        string `json:"interval"`
	IntervalCount   int    `json:"interval_count"`
	TrialPeriodDays int    `json:"trial_period_days"`
}

// Price is the price payload of price.* events.
type Price struct {
	ID         string            `json:"id"`
	Product    string            `json:"product"`
	Active     bool              `json:"active"`
	Currency   string            `json:"currency"`
	Nickname   string            `json:"nickname"`
	Type       string            `json:"type"`
	UnitAmount int64             `json:"unit_amount"`
	Metadata   map[string]string `json:"metadata"`
	Recurring  *Recurring        `json:"recurring"`
}

// Address as embedded in payment method and session customer details.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PaymentMethodCustomer struct {
	Address *Address `json:"address"`
}

// PaymentMethod is the expanded default_payment_method of a subscription.
type PaymentMethod struct {
	Type     string                 `json:"type"`
	Customer *PaymentMethodCustomer `json:"customer"`
}

// SubscriptionItem carries the price reference and quantity of one line.
type SubscriptionItem struct {
	Price    Price `json:"price"`
	Quantity int   `json:"quantity"`
}

// Subscription is the payload of customer.subscription.* events. Timestamp
// fields are Unix epoch seconds; pointers distinguish absent/null from zero.
type Subscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
	CancelAtPeriodEnd    bool           `json:"cancel_at_period_end"`
	CancelAt             *int64         `json:"cancel_at"`
	CanceledAt           *int64         `json:"canceled_at"`
	CurrentPeriodStart   *int64         `json:"current_period_start"`
	CurrentPeriodEnd     *int64         `json:"current_period_end"`
	Created              *int64         `json:"created"`
	EndedAt              *int64         `json:"ended_at"`
	TrialStart           *int64         `json:"trial_start"`
	TrialEnd             *int64         `json:"trial_end"`
	DefaultPaymentMethod *PaymentMethod `json:"default_payment_method"`
}

type CustomerDetails struct {
	Address *Address `json:"address"`
}

// CheckoutSession is the payload of checkout.session.completed events.
// Subscription holds the subscription id string; the API does not expand it
// on this object.
type CheckoutSession struct {
	ID              string            `json:"id"`
	Mode            string            `json:"mode"`
	Customer        string            `json:"customer"`
	Subscription    string            `json:"subscription"`
	Status          string            `json:"status"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
}

// Customer is the response shape of POST /v1/customers.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
