package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RecordInput struct {
	PropertyID *snowflake.ID
	ActorType  ActorType
	ActorID    *string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]interface{}
	IPAddress  *string
	UserAgent  *string
}

// Service records and queries audit trail entries. Record never fails the
// caller: persistence errors are logged and swallowed.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput)
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}
