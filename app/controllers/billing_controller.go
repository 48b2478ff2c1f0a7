package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/StripeSync/app/repository"
	"github.com/ManuelReschke/StripeSync/internal/pkg/billing"
	"github.com/ManuelReschke/StripeSync/internal/pkg/usercontext"
)

type checkoutPriceRequest struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type" validate:"required"`
}

type checkoutSessionRequest struct {
	Price    checkoutPriceRequest `json:"price"`
	Quantity int                  `json:"quantity" validate:"gte=0"`
}

// HandleCreateCheckoutSession starts a Stripe checkout flow for the
// authenticated user and relays the session JSON.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User not authorized"})
	}

	var req checkoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		log.Printf("checkout: user %d lookup failed: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unable to create or use customer"})
	}

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	raw, err := svc.CreateCheckoutSession(ctx, user, billing.CheckoutInput{
		PriceID:   req.Price.ID,
		PriceType: req.Price.Type,
		Quantity:  req.Quantity,
	})
	if err != nil {
		log.Printf("error creating checkout for user %d: %v", user.ID, err)
		if errors.Is(err, billing.ErrInvalidPriceType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid price type"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to create checkout"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(raw)
}

// HandleCreatePortalLink returns a billing portal session for the
// authenticated user's existing customer record.
func HandleCreatePortalLink(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User not authorized"})
	}

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	raw, err := svc.CreatePortalSession(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, billing.ErrNoCustomer) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Customer not found"})
		}
		log.Printf("error retrieving customer portal link for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to retrieve customer portal link"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"customer_portal_link": json.RawMessage(raw)})
}
