package invoices

import (
	"context"
	"fmt"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/mailer"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

// registrationMarker is the slice of the registrations store the invoice
// flows touch.
type registrationMarker interface {
	MarkInvoicePaid(ctx context.Context, invoiceID string, paymentRef string) (int64, error)
	MarkRemindersSent(ctx context.Context, invoiceID string) (int64, error)
}

type service struct {
	repo          Repository
	registrations registrationMarker
	mail          mailer.Sender
	logg          *logger.Logger
}

// NewService builds the invoice reconciler.
func NewService(repo Repository, registrations registrationMarker, mail mailer.Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoices repository required")
	}
	if registrations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registrations store required")
	}
	return &service{repo: repo, registrations: registrations, mail: mail, logg: logg}, nil
}

// ReconcilePaid flips every registration referencing the invoice to paid.
// An invoice with no pending registrations is a redelivery or an invoice
// with nothing left to settle, so zero matches still acks.
func (s *service) ReconcilePaid(ctx context.Context, input PaidInput) (*types.ReconcileSummary, error) {
	if input.ProviderInvoiceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id missing from event")
	}

	affected, err := s.registrations.MarkInvoicePaid(ctx, input.ProviderInvoiceID, input.PaymentReference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist invoice settlement").
			WithDetails(map[string]any{"invoice_id": input.ProviderInvoiceID})
	}

	summary := &types.ReconcileSummary{Updated: int(affected)}
	if affected == 0 && s.logg != nil {
		lctx := s.logg.WithInvoiceID(ctx, input.ProviderInvoiceID)
		s.logg.Info(lctx, "invoices.reconcile.no_pending_registrations")
	}
	return summary, nil
}

// SendReminder emails the payer of an unpaid invoice and records the send on
// the affected registrations.
func (s *service) SendReminder(ctx context.Context, providerInvoiceID string) error {
	if providerInvoiceID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if s.mail == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "mailer not configured")
	}

	invoice, err := s.repo.FindByProviderID(ctx, providerInvoiceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if invoice == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found").
			WithDetails(map[string]any{"invoice_id": providerInvoiceID})
	}

	due := ""
	if invoice.DueDate != nil {
		due = invoice.DueDate.Format("January 2, 2006")
	}
	msg := mailer.Message{
		ToEmail:  invoice.PayerEmail,
		Subject:  "Payment reminder for your registrations",
		PlainTxt: reminderBody(invoice.Total.StringFixed(2), due),
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "send reminder email").
			WithDetails(map[string]any{"invoice_id": providerInvoiceID})
	}

	if _, err := s.registrations.MarkRemindersSent(ctx, providerInvoiceID); err != nil {
		// The email already went out. Record-keeping failure is logged and
		// surfaced as transient so the operator can retry the marking.
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record reminder send").
			WithDetails(map[string]any{"invoice_id": providerInvoiceID})
	}

	if s.logg != nil {
		lctx := s.logg.WithInvoiceID(ctx, providerInvoiceID)
		s.logg.Info(lctx, "invoices.reminder.sent")
	}
	return nil
}

func reminderBody(total, due string) string {
	if due == "" {
		return fmt.Sprintf("You have an outstanding balance of %s for upcoming activities. Please complete your bank transfer to confirm the registrations.", total)
	}
	return fmt.Sprintf("You have an outstanding balance of %s due by %s for upcoming activities. Please complete your bank transfer to confirm the registrations.", total, due)
}
