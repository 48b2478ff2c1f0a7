package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/StripeSync/internal/pkg/billing"
	"github.com/ManuelReschke/StripeSync/internal/pkg/env"
	"github.com/ManuelReschke/StripeSync/internal/pkg/stripe"
)

// HandleStripeWebhook ingests signed Stripe webhook events and reconciles
// them into the local billing tables. The signature is checked before
// anything else; nothing is processed unverified.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if !stripe.VerifyWebhookSignature(rawBody, signature, secret) {
		// Keep an audit trail of rejected deliveries. Keyed by payload hash,
		// not by the claimed event id, so a forged delivery cannot occupy the
		// real event's dedup slot.
		eventType := ""
		if ev, err := stripe.ParseEvent(rawBody); err == nil {
			eventType = ev.Type
		}
		if _, _, err := svc.RecordWebhookEvent(ctx, "", eventType, rawBody, false); err != nil {
			log.Printf("failed to record rejected webhook delivery: %v", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid webhook signature."})
	}

	ev, err := stripe.ParseEvent(rawBody)
	if err != nil {
		log.Printf("failed to parse webhook payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid webhook payload"})
	}

	created, stored, err := svc.RecordWebhookEvent(ctx, ev.ID, ev.Type, rawBody, true)
	if err != nil {
		log.Printf("failed to record webhook event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to persist webhook event"})
	}
	if !created && billing.EventAlreadyProcessed(stored) {
		// Same delivery already completed; nothing to redo. Redeliveries of a
		// failed event fall through and are reprocessed.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Data received successfully"})
	}

	procErr := svc.ProcessEvent(ctx, ev)
	if err := svc.MarkWebhookProcessed(ctx, stored.ID, procErr); err != nil {
		log.Printf("failed to mark webhook event %d processed: %v", stored.ID, err)
	}
	if procErr != nil {
		log.Printf("error processing %s: %v", ev.Type, procErr)
		if errors.Is(procErr, billing.ErrUnhandledEventType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unhandled event type."})
		}
		entity := billing.EntityForEventType(ev.Type)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to process " + entity})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Data received successfully"})
}
