package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/roomstead/roomstead/internal/migration"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
	propertyservice "github.com/roomstead/roomstead/internal/property/service"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type billFixture struct {
	svc        utilitydomain.Service
	propertyA  propertydomain.Property
	propertyB  propertydomain.Property
}

func setupBillFixture(t *testing.T) *billFixture {
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
	ctx := context.Background()

	propertySvc := propertyservice.NewService(propertyservice.ServiceParam{DB: db, Log: nop, GenID: node})
	a, err := propertySvc.Create(ctx, propertydomain.CreatePropertyRequest{Name: "Kost A"})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	b, err := propertySvc.Create(ctx, propertydomain.CreatePropertyRequest{Name: "Kost B"})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	return &billFixture{
		svc:       NewService(ServiceParam{DB: db, Log: nop, GenID: node, PropertySvc: propertySvc}),
		propertyA: a,
		propertyB: b,
	}
}

func (f *billFixture) createBill(t *testing.T, property propertydomain.Property, month, kind string, amount int64) utilitydomain.UtilityBill {
	t.Helper()
	bill, err := f.svc.Create(context.Background(), utilitydomain.CreateBillRequest{
		PropertyID: property.ID.String(),
		Month:      month,
		Kind:       kind,
		Amount:     amount,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	return bill
}

func TestTotalsByPropertySumsAcrossKinds(t *testing.T) {
	f := setupBillFixture(t)
	f.createBill(t, f.propertyA, "2024-05", "electricity", 1200)
	f.createBill(t, f.propertyA, "2024-05", "water", 800)
	f.createBill(t, f.propertyB, "2024-05", "internet", 500)
	f.createBill(t, f.propertyA, "2024-04", "electricity", 9999)

	totals, err := f.svc.TotalsByProperty(context.Background(), "2024-05",
		[]snowflake.ID{f.propertyA.ID, f.propertyB.ID})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[f.propertyA.ID] != 2000 {
		t.Fatalf("expected 2000 for A, got %d", totals[f.propertyA.ID])
	}
	if totals[f.propertyB.ID] != 500 {
		t.Fatalf("expected 500 for B, got %d", totals[f.propertyB.ID])
	}
}

func TestTotalsByPropertyIncludesUnpaid(t *testing.T) {
	f := setupBillFixture(t)
	paid := f.createBill(t, f.propertyA, "2024-05", "electricity", 1000)
	f.createBill(t, f.propertyA, "2024-05", "water", 600)

	if _, err := f.svc.MarkPaid(context.Background(), paid.ID.String()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	totals, err := f.svc.TotalsByProperty(context.Background(), "2024-05", []snowflake.ID{f.propertyA.ID})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	// Paid status does not change the allocation base.
	if totals[f.propertyA.ID] != 1600 {
		t.Fatalf("expected 1600, got %d", totals[f.propertyA.ID])
	}
}

func TestTotalsByPropertyOmitsPropertiesWithoutBills(t *testing.T) {
	f := setupBillFixture(t)
	f.createBill(t, f.propertyA, "2024-05", "electricity", 1000)

	totals, err := f.svc.TotalsByProperty(context.Background(), "2024-05",
		[]snowflake.ID{f.propertyA.ID, f.propertyB.ID})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if _, ok := totals[f.propertyB.ID]; ok {
		t.Fatalf("expected property B absent, got %v", totals)
	}
}

func TestMarkPaidOnlyOnce(t *testing.T) {
	f := setupBillFixture(t)
	bill := f.createBill(t, f.propertyA, "2024-05", "electricity", 1000)
	ctx := context.Background()

	if _, err := f.svc.MarkPaid(ctx, bill.ID.String()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := f.svc.MarkPaid(ctx, bill.ID.String()); !errors.Is(err, utilitydomain.ErrBillAlreadyPaid) {
		t.Fatalf("expected ErrBillAlreadyPaid, got %v", err)
	}
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	f := setupBillFixture(t)

	_, err := f.svc.Create(context.Background(), utilitydomain.CreateBillRequest{
		PropertyID: f.propertyA.ID.String(),
		Month:      "2024-05",
		Kind:       "gas",
		Amount:     100,
	})
	if !errors.Is(err, utilitydomain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
