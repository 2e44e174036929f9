package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/luciaherrero/famcenter-backend/pkg/errors"
	"github.com/luciaherrero/famcenter-backend/pkg/types"
)

func TestWriteReceived(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteReceived(rec, &types.ReconcileSummary{Updated: 2, Skipped: 1})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var receipt types.WebhookReceipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !receipt.Received {
		t.Fatalf("expected received=true")
	}
	if receipt.Summary == nil || receipt.Summary.Updated != 2 {
		t.Fatalf("unexpected summary: %+v", receipt.Summary)
	}
}

func TestWriteReceived_NoSummary(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteReceived(rec, nil)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if string(raw["received"]) != "true" {
		t.Fatalf("expected received true, got %s", raw["received"])
	}
	if _, ok := raw["summary"]; ok {
		t.Fatalf("summary must be omitted when absent")
	}
}

func TestWriteError_StatusByCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"signature", pkgerrors.New(pkgerrors.CodeSignature, "stripe signature invalid"), http.StatusBadRequest, "INVALID_SIGNATURE"},
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "bad payload"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found"), http.StatusNotFound, "NOT_FOUND"},
		{"dependency", pkgerrors.New(pkgerrors.CodeDependency, "db down"), http.StatusServiceUnavailable, "DEPENDENCY_ERROR"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var envelope types.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, envelope.Error.Code)
			}
		})
	}
}

func TestWriteError_InternalHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "secret detail"))

	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Message == "secret detail" {
		t.Fatalf("internal error message must not leak")
	}
}
