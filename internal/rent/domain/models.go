// Package domain contains rent invoices, payments, and the generation
// contracts that tie occupancy, utility, and meal costs together.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus tracks the lifecycle of a rent invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOnline       PaymentMethod = "online"
)

// Valid reports whether the method is one of the accepted channels.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// RentInvoice is one tenant's rent bill for one month. Total always equals
// base_rent + utility_share + meal_cost.
type RentInvoice struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	InvoiceCode  string        `gorm:"type:text;not null;uniqueIndex:ux_rent_invoices_code" json:"invoice_code"`
	TenantID     snowflake.ID  `gorm:"not null;uniqueIndex:ux_rent_invoices_tenant_month" json:"tenant_id"`
	PropertyID   snowflake.ID  `gorm:"not null;index" json:"property_id"`
	RoomID       snowflake.ID  `gorm:"not null" json:"room_id"`
	Month        string        `gorm:"type:text;not null;uniqueIndex:ux_rent_invoices_tenant_month" json:"month"`
	BaseRent     int64         `gorm:"not null;default:0" json:"base_rent"`
	UtilityShare int64         `gorm:"not null;default:0" json:"utility_share"`
	MealCost     int64         `gorm:"not null;default:0" json:"meal_cost"`
	Total        int64         `gorm:"not null;default:0" json:"total"`
	Status       InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	DueDate      time.Time     `gorm:"type:date;not null" json:"due_date"`
	RemindedAt   *time.Time    `gorm:"type:timestamptz" json:"reminded_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RentInvoice) TableName() string { return "rent_invoices" }

// Payment settles exactly one invoice in full. Rows are immutable once
// created, enforced by a unique index on invoice_id.
type Payment struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	PaymentCode   string        `gorm:"type:text;not null;uniqueIndex:ux_payments_code" json:"payment_code"`
	InvoiceID     snowflake.ID  `gorm:"not null;uniqueIndex:ux_payments_invoice" json:"invoice_id"`
	AmountPaid    int64         `gorm:"not null" json:"amount_paid"`
	PaymentMethod PaymentMethod `gorm:"type:text;not null" json:"payment_method"`
	PaymentDate   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"payment_date"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// Assignment is one occupied room seat: the tenant plus the room pricing
// needed to bill them.
type Assignment struct {
	TenantID   snowflake.ID
	PropertyID snowflake.ID
	RoomID     snowflake.ID
	BaseRent   int64
}

var (
	ErrInvalidMonth       = errors.New("invalid_month")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrInvalidInvoiceID   = errors.New("invalid_invoice_id")
	ErrInvalidProperty    = errors.New("invalid_property_id")
	ErrInvalidTenant      = errors.New("invalid_tenant_id")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidMethod      = errors.New("invalid_payment_method")
	ErrInvoiceNotFound    = errors.New("invoice_not_found")
	ErrInvoiceAlreadyPaid = errors.New("invoice_already_paid")
	ErrAmountMismatch     = errors.New("amount_mismatch")
)
