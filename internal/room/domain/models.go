// Package domain contains rooms and the tenant-to-room occupancy mapping.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Room is a rentable unit inside a property.
type Room struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"property_id"`
	Label      string       `gorm:"type:text;not null" json:"label"`
	BaseRent   int64        `gorm:"not null;default:0" json:"base_rent"`
	Capacity   int          `gorm:"not null;default:1" json:"capacity"`
	IsActive   bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Room) TableName() string { return "rooms" }

// Occupant maps one tenant to the room they currently occupy. A tenant can
// occupy at most one room, enforced by a unique index on tenant_id.
type Occupant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	RoomID    snowflake.ID `gorm:"not null;index" json:"room_id"`
	TenantID  snowflake.ID `gorm:"not null;uniqueIndex:ux_room_occupants_tenant" json:"tenant_id"`
	Since     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"since"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Occupant) TableName() string { return "room_occupants" }

type CreateRoomRequest struct {
	PropertyID string
	Label      string
	BaseRent   int64
	Capacity   int
}

type UpdateRoomRequest struct {
	ID       string
	Label    *string
	BaseRent *int64
	Capacity *int
	IsActive *bool
}

type AssignRequest struct {
	RoomID   string
	TenantID string
}

type TransferRequest struct {
	RoomID   string
	TenantID string
	ToRoomID string
}

type Service interface {
	Create(ctx context.Context, req CreateRoomRequest) (Room, error)
	Update(ctx context.Context, req UpdateRoomRequest) (Room, error)
	GetByID(ctx context.Context, id string) (Room, error)
	List(ctx context.Context, propertyID string) ([]Room, error)

	Assign(ctx context.Context, req AssignRequest) (Occupant, error)
	MoveOut(ctx context.Context, roomID, tenantID string) error
	Transfer(ctx context.Context, req TransferRequest) (Occupant, error)
	ListOccupants(ctx context.Context, roomID string) ([]Occupant, error)
}

var (
	ErrInvalidID             = errors.New("invalid_room_id")
	ErrInvalidProperty       = errors.New("invalid_property_id")
	ErrInvalidLabel          = errors.New("invalid_room_label")
	ErrInvalidBaseRent       = errors.New("invalid_base_rent")
	ErrInvalidCapacity       = errors.New("invalid_room_capacity")
	ErrInvalidTenant         = errors.New("invalid_tenant_id")
	ErrRoomNotFound          = errors.New("room_not_found")
	ErrRoomInactive          = errors.New("room_inactive")
	ErrRoomFull              = errors.New("room_full")
	ErrTenantAlreadyAssigned = errors.New("tenant_already_assigned")
	ErrOccupantNotFound      = errors.New("occupant_not_found")
)
