// Package domain contains tenant meal orders and their monthly totals.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrderStatus tracks a meal order through delivery.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// MealOrder is one meal purchase by a tenant. Totals are stored in minor
// currency units (cents).
type MealOrder struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:ix_meal_orders_tenant_created,priority:1" json:"tenant_id"`
	TotalCents int64        `gorm:"not null;default:0" json:"total_cents"`
	Status     OrderStatus  `gorm:"type:text;not null;default:'placed'" json:"status"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_meal_orders_tenant_created,priority:2" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MealOrder) TableName() string { return "meal_orders" }

type CreateOrderRequest struct {
	TenantID   string
	TotalCents int64
}

type ListOrderRequest struct {
	TenantID string
	Month    string
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (MealOrder, error)
	List(ctx context.Context, req ListOrderRequest) ([]MealOrder, error)
	MarkDelivered(ctx context.Context, id string) (MealOrder, error)
	Cancel(ctx context.Context, id string) (MealOrder, error)

	// TotalsByTenant sums order totals for orders created inside the month's
	// UTC boundaries, restricted to the given statuses, grouped by tenant.
	// The summed cents are converted to whole currency units once per
	// tenant: round(cents / 100).
	TotalsByTenant(ctx context.Context, month string, statuses []OrderStatus) (map[snowflake.ID]int64, error)
}

var (
	ErrInvalidID       = errors.New("invalid_order_id")
	ErrInvalidTenant   = errors.New("invalid_tenant_id")
	ErrInvalidAmount   = errors.New("invalid_order_amount")
	ErrInvalidMonth    = errors.New("invalid_order_month")
	ErrOrderNotFound   = errors.New("meal_order_not_found")
	ErrOrderNotPending = errors.New("meal_order_not_pending")
)
