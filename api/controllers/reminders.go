package controllers

import (
	"context"
	"net/http"

	"github.com/luciaherrero/famcenter-backend/api/middleware"
	"github.com/luciaherrero/famcenter-backend/api/responses"
	"github.com/luciaherrero/famcenter-backend/api/validators"
	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/logger"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

type reminderSender interface {
	SendReminder(ctx context.Context, providerInvoiceID string) error
}

type remindInvoiceRequest struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
}

// RemindInvoice emails the payer of an outstanding invoice.
func RemindInvoice(svc reminderSender, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		var body remindInvoiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithInvoiceID(ctx, body.InvoiceID)
			if actor := middleware.UserIDFromContext(ctx); actor != "" {
				ctx = logg.WithField(ctx, "requested_by", actor)
			}
			logg.Info(ctx, "invoice.reminder.requested")
		}

		if err := svc.SendReminder(ctx, body.InvoiceID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.ReminderReceipt{Success: true})
	}
}
