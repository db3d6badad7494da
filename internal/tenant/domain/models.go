// Package domain contains the tenant contact registry.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is a person who can occupy a room and receive invoices.
type Tenant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Email     string       `gorm:"type:text;not null;uniqueIndex:ux_tenants_email" json:"email"`
	Phone     *string      `gorm:"type:text" json:"phone,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

type CreateTenantRequest struct {
	Name  string
	Email string
	Phone string
}

type ListTenantRequest struct {
	Name  string
	Email string
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (Tenant, error)
	GetByID(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context, req ListTenantRequest) ([]Tenant, error)
}

var (
	ErrInvalidID      = errors.New("invalid_tenant_id")
	ErrInvalidName    = errors.New("invalid_tenant_name")
	ErrInvalidEmail   = errors.New("invalid_tenant_email")
	ErrTenantNotFound = errors.New("tenant_not_found")
	ErrDuplicateEmail = errors.New("duplicate_tenant_email")
)
