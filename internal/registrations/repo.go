package registrations

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luciaherrero/famcenter-backend/pkg/db/models"
	"github.com/luciaherrero/famcenter-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a registrations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) MarkLinePaid(ctx context.Context, key LineKey, amount decimal.Decimal, paymentRef string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("child_id = ? AND activity_id = ? AND payer_id = ? AND checkout_session_id = ? AND payment_status = ?",
			key.ChildID, key.ActivityID, key.PayerID, key.CheckoutSessionID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"amount_paid":       amount,
			"payment_reference": paymentRef,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CountLine(ctx context.Context, key LineKey) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("child_id = ? AND activity_id = ? AND payer_id = ? AND checkout_session_id = ?",
			key.ChildID, key.ActivityID, key.PayerID, key.CheckoutSessionID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) MarkInvoicePaid(ctx context.Context, invoiceID string, paymentRef string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("invoice_id = ? AND payment_status = ?", invoiceID, enums.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"payment_reference": paymentRef,
			"due_date":          nil,
			"reminder_sent":     false,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) MarkRemindersSent(ctx context.Context, invoiceID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("invoice_id = ? AND payment_status = ? AND reminder_sent = ?", invoiceID, enums.PaymentStatusPending, false).
		Update("reminder_sent", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
