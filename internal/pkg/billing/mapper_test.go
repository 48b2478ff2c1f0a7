package billing

import (
	"testing"

	"github.com/ManuelReschke/StripeSync/app/models"
	"github.com/ManuelReschke/StripeSync/internal/pkg/stripe"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestIsoFromEpoch(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", isoFromEpoch(1700000000))
	assert.Equal(t, "", isoFromEpoch(0))
}

func TestIsoFromEpochPtr(t *testing.T) {
	assert.Equal(t, "", isoFromEpochPtr(nil))
	assert.Equal(t, "2023-11-14T22:13:20Z", isoFromEpochPtr(int64Ptr(1700000000)))
}

func TestApplyProduct(t *testing.T) {
	rec := &models.Product{}
	applyProduct(rec, &stripe.Product{
		ID:          "prod_1",
		Active:      true,
		Name:        "Pro Plan",
		Description: "All features",
		Metadata:    map[string]string{"tier": "pro"},
	})

	assert.Equal(t, "prod_1", rec.ProductID)
	assert.True(t, rec.Active)
	assert.Equal(t, "Pro Plan", rec.Name)
	assert.Equal(t, models.JSONMap{"tier": "pro"}, rec.Metadata)
}

func TestApplyProductNilMetadata(t *testing.T) {
	rec := &models.Product{}
	applyProduct(rec, &stripe.Product{ID: "prod_1"})

	assert.NotNil(t, rec.Metadata)
	assert.Empty(t, rec.Metadata)
}

func TestApplyPriceRecurring(t *testing.T) {
	rec := &models.Price{}
	applyPrice(rec, &stripe.Price{
		ID:         "price_1",
		Product:    "prod_1",
		Active:     true,
		Currency:   "eur",
		Nickname:   "monthly",
		Type:       models.PriceTypeRecurring,
		UnitAmount: 999,
		Recurring: &stripe.Recurring{
			Interval:        "month",
			IntervalCount:   1,
			TrialPeriodDays: 14,
		},
	})

	assert.Equal(t, "price_1", rec.PriceID)
	assert.Equal(t, "prod_1", rec.ProductID)
	assert.Equal(t, "monthly", rec.Description)
	assert.Equal(t, int64(999), rec.UnitAmount)
	assert.Equal(t, "month", rec.Interval)
	assert.Equal(t, 14, rec.TrialPeriodDays)
}

func TestApplyPriceOneTime(t *testing.T) {
	rec := &models.Price{}
	applyPrice(rec, &stripe.Price{
		ID:         "price_2",
		Type:       models.PriceTypeOneTime,
		UnitAmount: 4900,
	})

	assert.Equal(t, models.PriceTypeOneTime, rec.Type)
	assert.Empty(t, rec.Interval)
	assert.Zero(t, rec.IntervalCount)
}

func TestApplySubscription(t *testing.T) {
	obj := &stripe.Subscription{
		ID:                 "sub_1",
		Customer:           "cus_1",
		Status:             "active",
		CancelAtPeriodEnd:  true,
		CurrentPeriodStart: int64Ptr(1700000000),
		CurrentPeriodEnd:   int64Ptr(1702592000),
		Metadata:           map[string]string{"source": "checkout"},
	}
	obj.Items.Data = []stripe.SubscriptionItem{
		{Price: stripe.Price{ID: "price_1"}, Quantity: 3},
	}

	rec := &models.Subscription{}
	applySubscription(rec, obj, 7)

	assert.Equal(t, "sub_1", rec.SubscriptionID)
	assert.Equal(t, uint(7), rec.UserID)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "price_1", rec.PriceID)
	assert.Equal(t, 3, rec.Quantity)
	assert.True(t, rec.CancelAtPeriodEnd)
	assert.Equal(t, "2023-11-14T22:13:20Z", rec.CurrentPeriodStart)
	assert.Equal(t, "", rec.CanceledAt)
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "", formatAddress(nil))

	full := &stripe.Address{
		Line1:      "Musterstr. 1",
		City:       "Berlin",
		PostalCode: "10115",
		Country:    "DE",
	}
	assert.Equal(t, "Musterstr. 1,Berlin,10115,DE", formatAddress(full))
}

func TestPaymentMethodHelpers(t *testing.T) {
	assert.Equal(t, "", paymentMethodAddress(nil))
	assert.Equal(t, "", paymentMethodType(nil))

	pm := &stripe.PaymentMethod{
		Type: "card",
		Customer: &stripe.PaymentMethodCustomer{
			Address: &stripe.Address{City: "Berlin", Country: "DE"},
		},
	}
	assert.Equal(t, "card", paymentMethodType(pm))
	assert.Equal(t, "Berlin,DE", paymentMethodAddress(pm))

	assert.Equal(t, "", paymentMethodAddress(&stripe.PaymentMethod{Type: "card"}))
}
