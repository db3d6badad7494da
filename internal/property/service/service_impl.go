package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
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

func NewService(p ServiceParam) propertydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req propertydomain.CreatePropertyRequest) (propertydomain.Property, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return propertydomain.Property{}, propertydomain.ErrInvalidName
	}

	now := time.Now().UTC()
	record := propertydomain.Property{
		ID:        s.genID.Generate(),
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return propertydomain.Property{}, err
	}
	return record, nil
}

func (s *Service) Update(ctx context.Context, req propertydomain.UpdatePropertyRequest) (propertydomain.Property, error) {
	record, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return propertydomain.Property{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return propertydomain.Property{}, propertydomain.ErrInvalidName
		}
		record.Name = name
	}
	if req.Address != nil {
		record.Address = strings.TrimSpace(*req.Address)
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return propertydomain.Property{}, err
	}
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (propertydomain.Property, error) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return propertydomain.Property{}, propertydomain.ErrInvalidID
	}

	var record propertydomain.Property
	result := s.db.WithContext(ctx).Where("id = ?", propertyID).Limit(1).Find(&record)
	if result.Error != nil {
		return propertydomain.Property{}, result.Error
	}
	if record.ID == 0 {
		return propertydomain.Property{}, propertydomain.ErrPropertyNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]propertydomain.Property, error) {
	var records []propertydomain.Property
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
