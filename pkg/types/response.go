package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// WebhookReceipt is the fixed acknowledgement body the payment processor's
// retry logic keys off. Received is always true on a 2xx.
type WebhookReceipt struct {
	Received bool              `json:"received"`
	Summary  *ReconcileSummary `json:"summary,omitempty"`
}

// ReconcileSummary reports per-line-item outcomes of one delivery.
type ReconcileSummary struct {
	Updated     int `json:"updated"`
	AlreadyPaid int `json:"already_paid"`
	NotFound    int `json:"not_found"`
	Skipped     int `json:"skipped"`
}

// ReminderReceipt acknowledges an invoice reminder dispatch.
type ReminderReceipt struct {
	Success bool `json:"success"`
}
