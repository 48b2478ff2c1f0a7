package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/StripeSync/app/models"
	"github.com/ManuelReschke/StripeSync/internal/pkg/stripe"
)

// The mappers below are pure field translations from a decoded Stripe payload
// onto a local record. They never touch the store.

func isoFromEpoch(v int64) string {
	if v == 0 {
		return ""
	}
	return time.Unix(v, 0).UTC().Format(time.RFC3339)
}

func isoFromEpochPtr(v *int64) string {
	if v == nil {
		return ""
	}
	return isoFromEpoch(*v)
}

func metadataMap(m map[string]string) models.JSONMap {
	if m == nil {
		return models.JSONMap{}
	}
	return models.JSONMap(m)
}

func applyProduct(rec *models.Product, obj *stripe.Product) {
	rec.ProductID = obj.ID
	rec.Active = obj.Active
	rec.Name = obj.Name
	rec.Description = obj.Description
	rec.Metadata = metadataMap(obj.Metadata)
}

func applyPrice(rec *models.Price, obj *stripe.Price) {
	rec.PriceID = obj.ID
	rec.ProductID = obj.Product
	rec.Active = obj.Active
	rec.Currency = obj.Currency
	rec.Description = obj.Nickname
	rec.Type = obj.Type
	rec.UnitAmount = obj.UnitAmount
	rec.Metadata = metadataMap(obj.Metadata)

	if obj.Recurring != nil {
		rec.Interval = obj.Recurring.Interval
		rec.IntervalCount = obj.Recurring.IntervalCount
		rec.TrialPeriodDays = obj.Recurring.TrialPeriodDays
	}
}

func applySubscription(rec *models.Subscription, obj *stripe.Subscription, userID uint) {
	rec.SubscriptionID = obj.ID
	rec.UserID = userID
	rec.Status = obj.Status
	rec.Metadata = metadataMap(obj.Metadata)
	if len(obj.Items.Data) > 0 {
		rec.PriceID = obj.Items.Data[0].Price.ID
		rec.Quantity = obj.Items.Data[0].Quantity
	}
	rec.CancelAtPeriodEnd = obj.CancelAtPeriodEnd
	rec.CancelAt = isoFromEpochPtr(obj.CancelAt)
	rec.CanceledAt = isoFromEpochPtr(obj.CanceledAt)
	rec.CurrentPeriodStart = isoFromEpochPtr(obj.CurrentPeriodStart)
	rec.CurrentPeriodEnd = isoFromEpochPtr(obj.CurrentPeriodEnd)
	rec.CreatedRemote = isoFromEpochPtr(obj.Created)
	rec.EndedAt = isoFromEpochPtr(obj.EndedAt)
	rec.TrialStart = isoFromEpochPtr(obj.TrialStart)
	rec.TrialEnd = isoFromEpochPtr(obj.TrialEnd)
}

// applySessionSubscription maps the coarser subscription fields available on
// a completed checkout session.
func applySessionSubscription(rec *models.Subscription, sess *stripe.CheckoutSession, userID uint) {
	rec.SubscriptionID = sess.Subscription
	rec.UserID = userID
	rec.Status = sess.Status
	rec.Metadata = metadataMap(sess.Metadata)
}

// formatAddress flattens an address into the single string stored on the
// user record.
func formatAddress(a *stripe.Address) string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ",")
}

// paymentMethodAddress digs the billing address out of an expanded
// default_payment_method, tolerating missing intermediate objects.
func paymentMethodAddress(pm *stripe.PaymentMethod) string {
	if pm == nil || pm.Customer == nil {
		return ""
	}
	return formatAddress(pm.Customer.Address)
}

func paymentMethodType(pm *stripe.PaymentMethod) string {
	if pm == nil {
		return ""
	}
	return pm.Type
}
