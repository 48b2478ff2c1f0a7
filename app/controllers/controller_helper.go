package controllers

import (
	"github.com/ManuelReschke/StripeSync/internal/pkg/billing"
	"github.com/ManuelReschke/StripeSync/internal/pkg/database"
	"github.com/ManuelReschke/StripeSync/internal/pkg/env"
	"github.com/ManuelReschke/StripeSync/internal/pkg/stripe"
)

// newBillingService wires the billing service from the shared DB handle and
// the env-configured Stripe client.
func newBillingService() *billing.Service {
	return billing.NewServiceFromDB(database.GetDB(), stripe.NewClientFromEnv(), billing.CheckoutConfig{
		SuccessURL: env.GetEnv("CHECKOUT_SUCCESS_URL", ""),
		CancelURL:  env.GetEnv("CHECKOUT_CANCEL_URL", ""),
	})
}
