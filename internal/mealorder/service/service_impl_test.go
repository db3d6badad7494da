package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
	"github.com/roomstead/roomstead/internal/migration"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	tenantservice "github.com/roomstead/roomstead/internal/tenant/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mealFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	svc    mealdomain.Service
	tenant tenantdomain.Tenant
}

func setupMealFixture(t *testing.T) *mealFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := migration.RunMigrations(sqlDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	nop := zap.NewNop()

	tenantSvc := tenantservice.NewService(tenantservice.ServiceParam{DB: db, Log: nop, GenID: node})
	tenant, err := tenantSvc.Create(context.Background(), tenantdomain.CreateTenantRequest{
		Name:  "Tenant One",
		Email: "t1@example.com",
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	return &mealFixture{
		db:     db,
		node:   node,
		svc:    NewService(ServiceParam{DB: db, Log: nop, GenID: node, TenantSvc: tenantSvc}),
		tenant: tenant,
	}
}

func (f *mealFixture) insertOrder(t *testing.T, tenantID snowflake.ID, cents int64, status string, at time.Time) {
	t.Helper()
	if err := f.db.Exec(
		`INSERT INTO meal_orders (id, tenant_id, total_cents, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.node.Generate(), tenantID, cents, status, at, at,
	).Error; err != nil {
		t.Fatalf("insert order: %v", err)
	}
}

func TestTotalsByTenantRoundsOnce(t *testing.T) {
	f := setupMealFixture(t)
	in := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)

	// 1050 + 1050 = 2100 cents rounds to 21 on the aggregate; rounding each
	// order first would give 11 + 11 = 22.
	f.insertOrder(t, f.tenant.ID, 1050, "delivered", in)
	f.insertOrder(t, f.tenant.ID, 1050, "delivered", in)

	totals, err := f.svc.TotalsByTenant(context.Background(), "2024-05", []mealdomain.OrderStatus{mealdomain.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[f.tenant.ID] != 21 {
		t.Fatalf("expected 21, got %d", totals[f.tenant.ID])
	}
}

func TestTotalsByTenantFiltersStatusAndMonth(t *testing.T) {
	f := setupMealFixture(t)
	in := time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f.insertOrder(t, f.tenant.ID, 1500, "delivered", in)
	f.insertOrder(t, f.tenant.ID, 2000, "placed", in)
	f.insertOrder(t, f.tenant.ID, 3000, "delivered", out)

	totals, err := f.svc.TotalsByTenant(context.Background(), "2024-05", []mealdomain.OrderStatus{mealdomain.OrderStatusDelivered})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[f.tenant.ID] != 15 {
		t.Fatalf("expected 15, got %d", totals[f.tenant.ID])
	}
}

func TestTotalsByTenantEmptyMonth(t *testing.T) {
	f := setupMealFixture(t)

	totals, err := f.svc.TotalsByTenant(context.Background(), "2024-05", nil)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty map, got %v", totals)
	}
}

func TestTransitionOnlyFromPlaced(t *testing.T) {
	f := setupMealFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, mealdomain.CreateOrderRequest{
		TenantID:   f.tenant.ID.String(),
		TotalCents: 1200,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	delivered, err := f.svc.MarkDelivered(ctx, order.ID.String())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != mealdomain.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", delivered.Status)
	}

	if _, err := f.svc.Cancel(ctx, order.ID.String()); !errors.Is(err, mealdomain.ErrOrderNotPending) {
		t.Fatalf("expected ErrOrderNotPending, got %v", err)
	}
}
