// Package domain contains boarding-house property inventory.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Property is one boarding house with rooms under it.
type Property struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Address   string       `gorm:"type:text;not null;default:''" json:"address"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Property) TableName() string { return "properties" }

type CreatePropertyRequest struct {
	Name    string
	Address string
}

type UpdatePropertyRequest struct {
	ID       string
	Name     *string
	Address  *string
	IsActive *bool
}

type Service interface {
	Create(ctx context.Context, req CreatePropertyRequest) (Property, error)
	Update(ctx context.Context, req UpdatePropertyRequest) (Property, error)
	GetByID(ctx context.Context, id string) (Property, error)
	List(ctx context.Context) ([]Property, error)
}

var (
	ErrInvalidID        = errors.New("invalid_property_id")
	ErrInvalidName      = errors.New("invalid_property_name")
	ErrPropertyNotFound = errors.New("property_not_found")
)
