package invoices

import (
	"context"

	"github.com/luciaherrero/famcenter-backend/pkg/db/models"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

// Repository gives read access to invoice rows.
type Repository interface {
	// FindByProviderID looks an invoice up by the payment processor's
	// identifier. A missing invoice returns (nil, nil).
	FindByProviderID(ctx context.Context, providerInvoiceID string) (*models.Invoice, error)
}

// PaidInput carries everything the reconciler needs from a settled invoice
// event.
type PaidInput struct {
	ProviderInvoiceID string
	PaymentReference  string
}

// Service reconciles invoice settlements and drives payment reminders.
type Service interface {
	ReconcilePaid(ctx context.Context, input PaidInput) (*types.ReconcileSummary, error)
	SendReminder(ctx context.Context, providerInvoiceID string) error
}
