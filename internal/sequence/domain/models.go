// Package domain contains the persisted counter state behind generated codes.
package domain

import (
	"context"
	"errors"
	"time"
)

// Counter tracks the last issued sequence number for one code kind.
type Counter struct {
	Kind      string    `gorm:"primaryKey" json:"kind"`
	Seq       int64     `gorm:"not null;default:0" json:"seq"`
	Prefix    string    `gorm:"type:text;not null" json:"prefix"`
	Pad       int       `gorm:"not null;default:3" json:"pad"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "counters" }

// Service issues monotonically increasing, prefixed, zero-padded codes.
type Service interface {
	NextCode(ctx context.Context, kind, defaultPrefix string, defaultPad int) (string, error)
}

var (
	ErrInvalidKind = errors.New("invalid_counter_kind")
)
