package router

import (
	"log"
	"strconv"
	"time"

	"github.com/ManuelReschke/StripeSync/app/controllers"
	"github.com/ManuelReschke/StripeSync/internal/pkg/env"
	"github.com/ManuelReschke/StripeSync/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"
)

type HttpRouter struct {
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// The webhook endpoint is public; rate limit it so a flood of bogus
	// deliveries cannot monopolize the DB.
	app.Post("/stripe", webhookLimiter(), controllers.HandleStripeWebhook)

	authRequired := middleware.APIKeyAuthMiddleware()
	app.Post("/create-checkout-session", authRequired, controllers.HandleCreateCheckoutSession)
	app.Get("/create-portal-link", authRequired, controllers.HandleCreatePortalLink)
}

func webhookLimiter() fiber.Handler {
	cfg := limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}

	// Shared limiter state when Redis is configured; per-instance otherwise.
	if host := env.GetEnv("CACHE_HOST", ""); host != "" {
		port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
		if err != nil {
			port = 6379
		}
		cfg.Storage = redisstorage.New(redisstorage.Config{
			Host: host,
			Port: port,
		})
		log.Printf("webhook limiter backed by redis at %s:%d", host, port)
	}

	return limiter.New(cfg)
}
