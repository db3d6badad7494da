package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	"github.com/roomstead/roomstead/pkg/month"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	TenantSvc tenantdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	tenantSvc tenantdomain.Service
}

func NewService(p ServiceParam) mealdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("mealorder.service"),
		genID:     p.GenID,
		tenantSvc: p.TenantSvc,
	}
}

func (s *Service) Create(ctx context.Context, req mealdomain.CreateOrderRequest) (mealdomain.MealOrder, error) {
	tenant, err := s.tenantSvc.GetByID(ctx, req.TenantID)
	if err != nil {
		return mealdomain.MealOrder{}, err
	}
	if req.TotalCents <= 0 {
		return mealdomain.MealOrder{}, mealdomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	record := mealdomain.MealOrder{
		ID:         s.genID.Generate(),
		TenantID:   tenant.ID,
		TotalCents: req.TotalCents,
		Status:     mealdomain.OrderStatusPlaced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return mealdomain.MealOrder{}, err
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req mealdomain.ListOrderRequest) ([]mealdomain.MealOrder, error) {
	query := s.db.WithContext(ctx).Model(&mealdomain.MealOrder{})
	if strings.TrimSpace(req.TenantID) != "" {
		tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
		if err != nil {
			return nil, mealdomain.ErrInvalidTenant
		}
		query = query.Where("tenant_id = ?", tenantID)
	}
	if strings.TrimSpace(req.Month) != "" {
		parsed, err := month.Parse(req.Month)
		if err != nil {
			return nil, mealdomain.ErrInvalidMonth
		}
		start, end := parsed.Bounds()
		query = query.Where("created_at >= ? AND created_at < ?", start, end)
	}

	var records []mealdomain.MealOrder
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) MarkDelivered(ctx context.Context, id string) (mealdomain.MealOrder, error) {
	return s.transition(ctx, id, mealdomain.OrderStatusDelivered)
}

func (s *Service) Cancel(ctx context.Context, id string) (mealdomain.MealOrder, error) {
	return s.transition(ctx, id, mealdomain.OrderStatusCancelled)
}

// transition flips a placed order to a terminal status with a conditional
// update so two concurrent calls cannot both succeed.
func (s *Service) transition(ctx context.Context, id string, to mealdomain.OrderStatus) (mealdomain.MealOrder, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return mealdomain.MealOrder{}, mealdomain.ErrInvalidID
	}

	var record mealdomain.MealOrder
	result := s.db.WithContext(ctx).Where("id = ?", orderID).Limit(1).Find(&record)
	if result.Error != nil {
		return mealdomain.MealOrder{}, result.Error
	}
	if record.ID == 0 {
		return mealdomain.MealOrder{}, mealdomain.ErrOrderNotFound
	}

	update := s.db.WithContext(ctx).Exec(
		`UPDATE meal_orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		time.Now().UTC(),
		orderID,
		mealdomain.OrderStatusPlaced,
	)
	if update.Error != nil {
		return mealdomain.MealOrder{}, update.Error
	}
	if update.RowsAffected == 0 {
		return mealdomain.MealOrder{}, mealdomain.ErrOrderNotPending
	}

	record.Status = to
	return record, nil
}

func (s *Service) TotalsByTenant(ctx context.Context, orderMonth string, statuses []mealdomain.OrderStatus) (map[snowflake.ID]int64, error) {
	parsed, err := month.Parse(orderMonth)
	if err != nil {
		return nil, mealdomain.ErrInvalidMonth
	}
	if len(statuses) == 0 {
		statuses = []mealdomain.OrderStatus{mealdomain.OrderStatusDelivered}
	}
	start, end := parsed.Bounds()

	var rows []struct {
		TenantID snowflake.ID
		Cents    int64
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT tenant_id, SUM(total_cents) AS cents
		 FROM meal_orders
		 WHERE created_at >= ? AND created_at < ? AND status IN ?
		 GROUP BY tenant_id`,
		start,
		end,
		statuses,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[snowflake.ID]int64, len(rows))
	for _, row := range rows {
		// One rounding step on the aggregate, not per order.
		totals[row.TenantID] = (row.Cents + 50) / 100
	}
	return totals, nil
}
