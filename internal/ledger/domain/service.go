package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service writes balanced double-entry postings.
type Service interface {
	// CreateEntry posts one balanced entry. When tx is non-nil the postings
	// join the caller's transaction.
	CreateEntry(
		ctx context.Context,
		tx *gorm.DB,
		propertyID snowflake.ID,
		sourceType string,
		sourceID snowflake.ID,
		occurredAt time.Time,
		lines []LedgerEntryLine,
	) error

	// EnsureAccount resolves the account id for a property code, creating
	// the account on first use.
	EnsureAccount(ctx context.Context, tx *gorm.DB, propertyID snowflake.ID, code, name string) (snowflake.ID, error)

	// AccountBalance returns debit-minus-credit for a property account code.
	AccountBalance(ctx context.Context, propertyID snowflake.ID, code string) (int64, error)
}

var (
	ErrInvalidProperty      = errors.New("invalid_property")
	ErrInvalidSourceType    = errors.New("invalid_source_type")
	ErrInvalidSourceID      = errors.New("invalid_source_id")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidEntryLines    = errors.New("invalid_entry_lines")
	ErrInvalidLineAmount    = errors.New("invalid_line_amount")
	ErrInvalidLineDirection = errors.New("invalid_line_direction")
	ErrInvalidAccount       = errors.New("invalid_account")
	ErrUnbalancedEntry      = errors.New("unbalanced_entry")
)
