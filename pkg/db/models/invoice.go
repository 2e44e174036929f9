package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice records a delayed bank-transfer payment request issued at checkout
// time. It is read-only for this service; the webhook flow flips the
// registrations referencing it, and the reminder flow emails the payer.
type Invoice struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// ProviderInvoiceID is the payment processor's invoice identifier, the
	// value invoice.paid events and registration rows reference.
	ProviderInvoiceID string `gorm:"column:provider_invoice_id;not null;unique"`

	PayerID    uuid.UUID       `gorm:"column:payer_id;type:uuid;not null;index"`
	PayerEmail string          `gorm:"column:payer_email;not null"`
	Total      decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	DueDate    *time.Time      `gorm:"column:due_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name regardless of GORM pluralization rules.
func (Invoice) TableName() string {
	return "invoices"
}
