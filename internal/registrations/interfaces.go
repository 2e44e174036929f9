package registrations

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

// LineKey identifies one registration line within a checkout attempt.
type LineKey struct {
	ChildID           uuid.UUID
	ActivityID        uuid.UUID
	PayerID           uuid.UUID
	CheckoutSessionID string
}

// Repository gives data access for registration rows.
type Repository interface {
	// MarkLinePaid flips one pending line to paid in a single conditional
	// update and returns the number of rows it changed. Zero means the line
	// was either already paid or never created.
	MarkLinePaid(ctx context.Context, key LineKey, amount decimal.Decimal, paymentRef string) (int64, error)
	// CountLine reports how many rows match the line key regardless of
	// payment status. It disambiguates a zero-row update.
	CountLine(ctx context.Context, key LineKey) (int64, error)
	// MarkInvoicePaid flips every registration carrying the invoice id to
	// paid and clears its dunning state. Matching zero rows is not an error.
	MarkInvoicePaid(ctx context.Context, invoiceID string, paymentRef string) (int64, error)
	// MarkRemindersSent records that a reminder went out for every unpaid
	// registration on the invoice.
	MarkRemindersSent(ctx context.Context, invoiceID string) (int64, error)
}

// CheckoutInput carries everything the reconciler needs from a settled
// checkout session.
type CheckoutInput struct {
	SessionID        string
	PaymentReference string
	Lines            []Line
	SkippedLines     int
}

// Line is one resolved cart line item.
type Line struct {
	ChildID        uuid.UUID
	ActivityID     uuid.UUID
	PayerID        uuid.UUID
	UnitPriceCents int64
}

// Service reconciles settled payments against registration rows.
type Service interface {
	ReconcileCheckout(ctx context.Context, input CheckoutInput) (*types.ReconcileSummary, error)
}
