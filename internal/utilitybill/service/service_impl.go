package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
	"github.com/roomstead/roomstead/pkg/month"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	PropertySvc propertydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	propertySvc propertydomain.Service
}

func NewService(p ServiceParam) utilitydomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("utilitybill.service"),
		genID:       p.GenID,
		propertySvc: p.PropertySvc,
	}
}

func (s *Service) Create(ctx context.Context, req utilitydomain.CreateBillRequest) (utilitydomain.UtilityBill, error) {
	property, err := s.propertySvc.GetByID(ctx, req.PropertyID)
	if err != nil {
		return utilitydomain.UtilityBill{}, err
	}

	billMonth, err := month.Parse(req.Month)
	if err != nil {
		return utilitydomain.UtilityBill{}, utilitydomain.ErrInvalidMonth
	}

	kind := utilitydomain.BillKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	switch kind {
	case utilitydomain.BillKindElectricity,
		utilitydomain.BillKindWater,
		utilitydomain.BillKindInternet,
		utilitydomain.BillKindOther:
	default:
		return utilitydomain.UtilityBill{}, utilitydomain.ErrInvalidKind
	}

	if req.Amount < 0 {
		return utilitydomain.UtilityBill{}, utilitydomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	record := utilitydomain.UtilityBill{
		ID:         s.genID.Generate(),
		PropertyID: property.ID,
		Month:      billMonth.String(),
		Kind:       kind,
		Amount:     req.Amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return utilitydomain.UtilityBill{}, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req utilitydomain.ListBillRequest) ([]utilitydomain.UtilityBill, error) {
	query := s.db.WithContext(ctx).Model(&utilitydomain.UtilityBill{})
	if strings.TrimSpace(req.PropertyID) != "" {
		propertyID, err := snowflake.ParseString(strings.TrimSpace(req.PropertyID))
		if err != nil {
			return nil, utilitydomain.ErrInvalidProperty
		}
		query = query.Where("property_id = ?", propertyID)
	}
	if strings.TrimSpace(req.Month) != "" {
		billMonth, err := month.Parse(req.Month)
		if err != nil {
			return nil, utilitydomain.ErrInvalidMonth
		}
		query = query.Where("month = ?", billMonth.String())
	}

	var records []utilitydomain.UtilityBill
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (utilitydomain.UtilityBill, error) {
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return utilitydomain.UtilityBill{}, utilitydomain.ErrInvalidID
	}

	var record utilitydomain.UtilityBill
	result := s.db.WithContext(ctx).Where("id = ?", billID).Limit(1).Find(&record)
	if result.Error != nil {
		return utilitydomain.UtilityBill{}, result.Error
	}
	if record.ID == 0 {
		return utilitydomain.UtilityBill{}, utilitydomain.ErrBillNotFound
	}

	update := s.db.WithContext(ctx).Exec(
		`UPDATE utility_bills SET is_paid = TRUE, updated_at = ? WHERE id = ? AND is_paid = FALSE`,
		time.Now().UTC(),
		billID,
	)
	if update.Error != nil {
		return utilitydomain.UtilityBill{}, update.Error
	}
	if update.RowsAffected == 0 {
		return utilitydomain.UtilityBill{}, utilitydomain.ErrBillAlreadyPaid
	}

	record.IsPaid = true
	return record, nil
}

func (s *Service) TotalsByProperty(ctx context.Context, billMonth string, propertyIDs []snowflake.ID) (map[snowflake.ID]int64, error) {
	totals := make(map[snowflake.ID]int64, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return totals, nil
	}

	parsed, err := month.Parse(billMonth)
	if err != nil {
		return nil, utilitydomain.ErrInvalidMonth
	}

	var rows []struct {
		PropertyID snowflake.ID
		Total      int64
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT property_id, SUM(amount) AS total
		 FROM utility_bills
		 WHERE month = ? AND property_id IN ?
		 GROUP BY property_id`,
		parsed.String(),
		propertyIDs,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.PropertyID] = row.Total
	}
	return totals, nil
}
