package domain

import (
	"context"
)

type GenerateInvoicesRequest struct {
	Month   string
	DueDate string
}

type GenerateInvoicesResponse struct {
	CreatedCount int           `json:"created_count"`
	Invoices     []RentInvoice `json:"invoices"`
}

type ListInvoicesRequest struct {
	PropertyID string
	TenantID   string
	Month      string
	Status     string
}

type ListPaymentsRequest struct {
	PropertyID string
	TenantID   string
	Month      string
}

type PayInvoiceRequest struct {
	InvoiceID     string
	AmountPaid    int64
	PaymentMethod string
}

type PayInvoiceResponse struct {
	Payment Payment     `json:"payment"`
	Invoice RentInvoice `json:"invoice"`
}

// Service generates and settles monthly rent invoices.
type Service interface {
	// GenerateInvoices bills every current occupant for the month. Re-runs
	// are idempotent per tenant: existing invoices are returned untouched
	// and excluded from CreatedCount.
	GenerateInvoices(ctx context.Context, req GenerateInvoicesRequest) (GenerateInvoicesResponse, error)

	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]RentInvoice, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error)

	// PayInvoice records a full payment and flips the invoice to paid.
	// Partial amounts are rejected.
	PayInvoice(ctx context.Context, req PayInvoiceRequest) (PayInvoiceResponse, error)
}
