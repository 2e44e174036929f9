package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/luciaherrero/famcenter-backend/internal/cart"
	"github.com/luciaherrero/famcenter-backend/internal/invoices"
	"github.com/luciaherrero/famcenter-backend/internal/registrations"
	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

type cartResolver interface {
	Resolve(ctx context.Context, session *stripe.CheckoutSession) (*cart.Resolution, error)
}

type ServiceParams struct {
	Cart          cartResolver
	Registrations registrations.Service
	Invoices      invoices.Service
	Logger        *logger.Logger
}

// Service routes verified payment events to the reconcilers. Event types it
// does not recognize are acknowledged without side effects so the processor
// stops redelivering them.
type Service struct {
	cart          cartResolver
	registrations registrations.Service
	invoices      invoices.Service
	logg          *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart resolver required")
	}
	if params.Registrations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registrations service required")
	}
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoices service required")
	}
	return &Service{
		cart:          params.Cart,
		registrations: params.Registrations,
		invoices:      params.Invoices,
		logg:          params.Logger,
	}, nil
}

// HandleEvent dispatches one verified event. A nil summary with a nil error
// means the event was acknowledged as a no-op.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (*types.ReconcileSummary, error) {
	if event == nil || event.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeInvoicePaid:
		return s.handleInvoicePaid(ctx, event)
	default:
		return nil, nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) (*types.ReconcileSummary, error) {
	if session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing from event")
	}
	// Subscription-mode sessions and sessions that settle later through a
	// delayed method are acked here and reconciled by their own events.
	if session.Mode != stripe.CheckoutSessionModePayment ||
		session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "session_id", session.ID), "webhook.checkout.ignored")
		}
		return nil, nil
	}

	resolution, err := s.cart.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}

	input := registrations.CheckoutInput{
		SessionID:        session.ID,
		PaymentReference: paymentIntentID(session),
		SkippedLines:     resolution.Skipped,
	}
	for _, line := range resolution.Lines {
		input.Lines = append(input.Lines, registrations.Line{
			ChildID:        line.ChildID,
			ActivityID:     line.ActivityID,
			PayerID:        line.PayerID,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return s.registrations.ReconcileCheckout(ctx, input)
}

func (s *Service) handleInvoicePaid(ctx context.Context, event *stripe.Event) (*types.ReconcileSummary, error) {
	invoiceID := event.GetObjectValue("id")
	if invoiceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id missing from event")
	}
	return s.invoices.ReconcilePaid(ctx, invoices.PaidInput{
		ProviderInvoiceID: invoiceID,
		PaymentReference:  event.GetObjectValue("payment_intent"),
	})
}

func paymentIntentID(session *stripe.CheckoutSession) string {
	if session.PaymentIntent == nil {
		return ""
	}
	return session.PaymentIntent.ID
}
