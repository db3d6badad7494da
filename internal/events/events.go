package events

// Billing event types emitted by the rent pipeline.
const (
	EventInvoiceCreated    = "invoice_created"
	EventPaymentRecorded   = "payment_recorded"
	EventReminderSent      = "reminder_sent"
	EventTenantAssigned    = "tenant_assigned"
	EventTenantMovedOut    = "tenant_moved_out"
	EventTenantTransferred = "tenant_transferred"
)

// InvoicePayload captures the minimal data needed to follow up on an invoice.
type InvoicePayload struct {
	InvoiceID   string `json:"invoice_id"`
	InvoiceCode string `json:"invoice_code"`
	TenantID    string `json:"tenant_id"`
	Month       string `json:"month"`
	Total       int64  `json:"total"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	return map[string]any{
		"invoice_id":   p.InvoiceID,
		"invoice_code": p.InvoiceCode,
		"tenant_id":    p.TenantID,
		"month":        p.Month,
		"total":        p.Total,
	}
}

// PaymentPayload captures the minimal data needed to roll up a payment.
type PaymentPayload struct {
	PaymentID   string `json:"payment_id"`
	InvoiceID   string `json:"invoice_id"`
	PaymentCode string `json:"payment_code"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p PaymentPayload) ToMap() map[string]any {
	return map[string]any{
		"payment_id":   p.PaymentID,
		"invoice_id":   p.InvoiceID,
		"payment_code": p.PaymentCode,
		"amount":       p.Amount,
		"method":       p.Method,
	}
}
