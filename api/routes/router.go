package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luciaherrero/famcenter-backend/api/controllers"
	webhookcontrollers "github.com/luciaherrero/famcenter-backend/api/controllers/webhooks"
	"github.com/luciaherrero/famcenter-backend/api/middleware"
	"github.com/luciaherrero/famcenter-backend/internal/invoices"
	stripewebhook "github.com/luciaherrero/famcenter-backend/internal/webhooks/stripe"
	"github.com/luciaherrero/famcenter-backend/pkg/config"
	"github.com/luciaherrero/famcenter-backend/pkg/enums"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/metrics"
	"github.com/luciaherrero/famcenter-backend/pkg/stripe"
)

type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Cache          controllers.Pinger
	StripeClient   *stripe.Client
	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard
	WebhookMetrics *metrics.WebhookMetrics
	InvoiceService invoices.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.DB, p.Cache, p.Logger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(
			p.WebhookService,
			p.StripeClient,
			p.WebhookGuard,
			p.Config.Webhook,
			p.WebhookMetrics,
			p.Logger,
		))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Logger))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), p.Logger))

		r.Post("/invoices/remind", controllers.RemindInvoice(p.InvoiceService, p.Logger))
	})

	return r
}
