package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luciaherrero/famcenter-backend/pkg/enums"
)

// Registration is one child's enrollment in one activity, created in pending
// state at checkout time and reconciled to paid by webhook processing. Rows
// are never deleted by this service.
type Registration struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ChildID    uuid.UUID `gorm:"column:child_id;type:uuid;not null;uniqueIndex:idx_registrations_line"`
	ActivityID uuid.UUID `gorm:"column:activity_id;type:uuid;not null;uniqueIndex:idx_registrations_line"`
	PayerID    uuid.UUID `gorm:"column:payer_id;type:uuid;not null;uniqueIndex:idx_registrations_line"`

	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending';index"`
	AmountPaid    decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`

	// CheckoutSessionID is the correlation key recorded at checkout creation;
	// one session maps to exactly one checkout attempt, which scopes the
	// uniqueness of the (child, activity, payer) triple.
	CheckoutSessionID string `gorm:"column:checkout_session_id;not null;default:'';uniqueIndex:idx_registrations_line"`
	// PaymentReference holds the settled payment-intent id once paid.
	PaymentReference string `gorm:"column:payment_reference;not null;default:''"`

	InvoiceID    *string    `gorm:"column:invoice_id;index"`
	DueDate      *time.Time `gorm:"column:due_date"`
	ReminderSent bool       `gorm:"column:reminder_sent;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name regardless of GORM pluralization rules.
func (Registration) TableName() string {
	return "registrations"
}
