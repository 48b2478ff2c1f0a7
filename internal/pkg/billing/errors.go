package billing

import "errors"

// Sentinel errors surfaced to the handler layer, which maps them to HTTP
// status codes.
var (
	ErrUnhandledEventType        = errors.New("unhandled event type")
	ErrNoCustomerForSubscription = errors.New("no customer found for subscription")
	ErrInvalidPriceType          = errors.New("invalid price type")
	ErrNoCustomer                = errors.New("customer not found")
)
