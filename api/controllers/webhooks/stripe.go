package webhooks

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"
	stripewh "github.com/stripe/stripe-go/v84/webhook"

	"github.com/luciaherrero/famcenter-backend/api/responses"
	"github.com/luciaherrero/famcenter-backend/pkg/config"
	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/metrics"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) (*types.ReconcileSummary, error)
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook handles payment events for checkout sessions and invoices.
// The response contract is fixed: 200 acknowledges, 4xx tells the processor
// to stop redelivering, 5xx asks for another attempt.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, whCfg config.WebhookConfig, mtr *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "stripe signature missing"))
			return
		}

		event, err := stripewh.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "stripe signature invalid"))
			return
		}

		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			if mtr != nil {
				mtr.IncEvent(string(event.Type), "duplicate")
			}
			responses.WriteReceived(w, nil)
			return
		}

		handleCtx := ctx
		if whCfg.HandleTimeout > 0 {
			var cancel context.CancelFunc
			handleCtx, cancel = context.WithTimeout(ctx, whCfg.HandleTimeout)
			defer cancel()
		}

		start := time.Now()
		summary, err := svc.HandleEvent(handleCtx, &event)
		if mtr != nil {
			mtr.ObserveDuration(string(event.Type), time.Since(start))
		}
		if err != nil {
			// Only transient failures get their mark cleared. A permanent
			// rejection keeps the mark so a redelivery short-circuits.
			// The clear runs on the request context, not the handle
			// context, which is already done when the timeout fired.
			if pkgerrors.Retryable(err) {
				if derr := guard.Delete(context.WithoutCancel(ctx), event.ID); derr != nil && logg != nil {
					logg.Error(ctx, "webhook.idempotency.unmark_failed", derr)
				}
			}
			if mtr != nil {
				mtr.IncEvent(string(event.Type), "error")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if mtr != nil {
			mtr.IncEvent(string(event.Type), "processed")
			if summary != nil {
				mtr.AddLines("updated", summary.Updated)
				mtr.AddLines("already_paid", summary.AlreadyPaid)
				mtr.AddLines("not_found", summary.NotFound)
				mtr.AddLines("skipped", summary.Skipped)
			}
		}
		if logg != nil {
			logg.Info(ctx, "webhook.event.processed")
		}
		responses.WriteReceived(w, summary)
	}
}
