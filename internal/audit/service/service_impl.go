package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/roomstead/roomstead/internal/audit/domain"
	obscontext "github.com/roomstead/roomstead/internal/observability/context"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repository auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repository,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, input auditdomain.RecordInput) {
	entry := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		PropertyID: input.PropertyID,
		ActorType:  string(input.ActorType),
		ActorID:    input.ActorID,
		Action:     input.Action,
		TargetType: input.TargetType,
		Metadata:   datatypes.JSONMap(input.Metadata),
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}
	if input.TargetID != "" {
		entry.TargetID = &input.TargetID
	}
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	if entry.ActorType == "" {
		entry.ActorType = string(auditdomain.ActorTypeSystem)
	}
	if entry.IPAddress == nil {
		if ip := obscontext.ClientIPFromContext(ctx); ip != "" {
			entry.IPAddress = &ip
		}
	}
	if entry.UserAgent == nil {
		if ua := obscontext.UserAgentFromContext(ctx); ua != "" {
			entry.UserAgent = &ua
		}
	}

	db := tx
	if db == nil {
		db = s.db
	}
	if err := s.repo.Insert(ctx, db, entry); err != nil {
		s.log.Warn("failed to record audit log",
			zap.String("action", input.Action),
			zap.String("target_type", input.TargetType),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, filter)
}
