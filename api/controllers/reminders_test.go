package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

type stubReminderSender struct {
	invoiceIDs []string
	err        error
}

func (s *stubReminderSender) SendReminder(ctx context.Context, providerInvoiceID string) error {
	s.invoiceIDs = append(s.invoiceIDs, providerInvoiceID)
	return s.err
}

func postReminder(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/invoices/remind", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRemindInvoice_Success(t *testing.T) {
	svc := &stubReminderSender{}
	handler := RemindInvoice(svc, nil)

	rec := postReminder(handler, `{"invoice_id":"in_123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if len(svc.invoiceIDs) != 1 || svc.invoiceIDs[0] != "in_123" {
		t.Fatalf("unexpected service calls: %v", svc.invoiceIDs)
	}

	var envelope struct {
		Data types.ReminderReceipt `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !envelope.Data.Success {
		t.Fatalf("expected success=true, body %s", rec.Body.String())
	}
}

func TestRemindInvoice_MissingInvoiceID(t *testing.T) {
	svc := &stubReminderSender{}
	handler := RemindInvoice(svc, nil)

	rec := postReminder(handler, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(svc.invoiceIDs) != 0 {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestRemindInvoice_UnknownInvoice(t *testing.T) {
	svc := &stubReminderSender{err: pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")}
	handler := RemindInvoice(svc, nil)

	rec := postReminder(handler, `{"invoice_id":"in_missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemindInvoice_MailerFault(t *testing.T) {
	svc := &stubReminderSender{err: pkgerrors.New(pkgerrors.CodeInternal, "send reminder email")}
	handler := RemindInvoice(svc, nil)

	rec := postReminder(handler, `{"invoice_id":"in_123"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
