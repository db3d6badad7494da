package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req tenantdomain.CreateTenantRequest) (tenantdomain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidEmail
	}

	var existing int64
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM tenants WHERE email = ?`, email,
	).Scan(&existing).Error; err != nil {
		return tenantdomain.Tenant{}, err
	}
	if existing > 0 {
		return tenantdomain.Tenant{}, tenantdomain.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	record := tenantdomain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		record.Phone = &phone
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return tenantdomain.Tenant{}, err
	}
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (tenantdomain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return tenantdomain.Tenant{}, tenantdomain.ErrInvalidID
	}

	var record tenantdomain.Tenant
	result := s.db.WithContext(ctx).Where("id = ?", tenantID).Limit(1).Find(&record)
	if result.Error != nil {
		return tenantdomain.Tenant{}, result.Error
	}
	if record.ID == 0 {
		return tenantdomain.Tenant{}, tenantdomain.ErrTenantNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req tenantdomain.ListTenantRequest) ([]tenantdomain.Tenant, error) {
	query := s.db.WithContext(ctx).Model(&tenantdomain.Tenant{})
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		query = query.Where("email = ?", email)
	}

	var records []tenantdomain.Tenant
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
