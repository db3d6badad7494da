// Package domain contains property utility bills and their monthly totals.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillKind classifies a utility bill.
type BillKind string

const (
	BillKindElectricity BillKind = "electricity"
	BillKindWater       BillKind = "water"
	BillKindInternet    BillKind = "internet"
	BillKindOther       BillKind = "other"
)

// UtilityBill is one utility charge against a property for a month.
type UtilityBill struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;index:ix_utility_bills_property_month,priority:1" json:"property_id"`
	Month      string       `gorm:"type:text;not null;index:ix_utility_bills_property_month,priority:2" json:"month"`
	Kind       BillKind     `gorm:"type:text;not null" json:"kind"`
	Amount     int64        `gorm:"not null;default:0" json:"amount"`
	IsPaid     bool         `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UtilityBill) TableName() string { return "utility_bills" }

type CreateBillRequest struct {
	PropertyID string
	Month      string
	Kind       string
	Amount     int64
}

type ListBillRequest struct {
	PropertyID string
	Month      string
}

type Service interface {
	Create(ctx context.Context, req CreateBillRequest) (UtilityBill, error)
	List(ctx context.Context, req ListBillRequest) ([]UtilityBill, error)
	MarkPaid(ctx context.Context, id string) (UtilityBill, error)

	// TotalsByProperty sums bill amounts for the month across the given
	// properties regardless of paid status. Properties without bills are
	// absent from the result.
	TotalsByProperty(ctx context.Context, month string, propertyIDs []snowflake.ID) (map[snowflake.ID]int64, error)
}

var (
	ErrInvalidID       = errors.New("invalid_bill_id")
	ErrInvalidProperty = errors.New("invalid_property_id")
	ErrInvalidMonth    = errors.New("invalid_bill_month")
	ErrInvalidKind     = errors.New("invalid_bill_kind")
	ErrInvalidAmount   = errors.New("invalid_bill_amount")
	ErrBillNotFound    = errors.New("utility_bill_not_found")
	ErrBillAlreadyPaid = errors.New("utility_bill_already_paid")
)
