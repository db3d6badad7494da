package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/roomstead/roomstead/internal/clock"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/events"
	"github.com/roomstead/roomstead/internal/migration"
	"github.com/roomstead/roomstead/internal/notifier"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type workerFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	worker *Worker

	propertyID snowflake.ID
	tenantID   snowflake.ID
	roomID     snowflake.ID
}

func setupWorkerFixture(t *testing.T) *workerFixture {
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
	clk := clock.FixedClock{At: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{
		Rent: config.RentConfig{ReminderInterval: time.Hour, ReminderBatch: 10},
	}

	f := &workerFixture{
		db:         db,
		node:       node,
		propertyID: node.Generate(),
		tenantID:   node.Generate(),
		roomID:     node.Generate(),
	}
	f.worker = NewWorker(Params{
		DB:       db,
		Log:      nop,
		Config:   cfg,
		Clock:    clk,
		Notifier: notifier.NewService(notifier.ServiceParam{DB: db, Log: nop, Clock: clk, Client: notifier.NewMailClient(cfg)}),
		Outbox:   events.NewOutbox(db, node),
	})

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := db.Exec(
		`INSERT INTO tenants (id, name, email, created_at, updated_at) VALUES (?, 'Tenant One', 't1@example.com', ?, ?)`,
		f.tenantID, now, now,
	).Error; err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
	return f
}

func (f *workerFixture) insertInvoice(t *testing.T, status rentdomain.InvoiceStatus, dueDate time.Time, remindedAt *time.Time) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	err := f.db.Exec(
		`INSERT INTO rent_invoices (id, invoice_code, tenant_id, property_id, room_id, month, base_rent, utility_share, meal_cost, total, status, due_date, reminded_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '2024-05', 10000, 0, 0, 10000, ?, ?, ?, ?, ?)`,
		id, "INV"+id.String(), f.tenantID, f.propertyID, f.roomID, status, dueDate, remindedAt, now, now,
	).Error
	if err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
	return id
}

func (f *workerFixture) remindedAt(t *testing.T, id snowflake.ID) *time.Time {
	t.Helper()
	var invoice rentdomain.RentInvoice
	if err := f.db.First(&invoice, "id = ?", id).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	return invoice.RemindedAt
}

func TestRunOnceMarksOverduePendingInvoices(t *testing.T) {
	f := setupWorkerFixture(t)
	ctx := context.Background()

	overdue := f.insertInvoice(t, rentdomain.InvoiceStatusPending, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), nil)
	future := f.insertInvoice(t, rentdomain.InvoiceStatusPending, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), nil)
	paid := f.insertInvoice(t, rentdomain.InvoiceStatusPaid, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), nil)

	if err := f.worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if f.remindedAt(t, overdue) == nil {
		t.Fatal("expected overdue invoice to be marked reminded")
	}
	if f.remindedAt(t, future) != nil {
		t.Fatal("expected future invoice to stay untouched")
	}
	if f.remindedAt(t, paid) != nil {
		t.Fatal("expected paid invoice to stay untouched")
	}
}

func TestRunOnceRespectsCooldown(t *testing.T) {
	f := setupWorkerFixture(t)
	ctx := context.Background()

	recent := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)
	id := f.insertInvoice(t, rentdomain.InvoiceStatusPending, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), &recent)

	if err := f.worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	got := f.remindedAt(t, id)
	if got == nil || !got.Equal(recent) {
		t.Fatalf("expected reminded_at to stay %v, got %v", recent, got)
	}
}

func TestRunOnceRollsBackClaimWhenSendFails(t *testing.T) {
	f := setupWorkerFixture(t)
	ctx := context.Background()

	// Mail is on but the tenant has no address, so the send fails after the
	// claim and the claim must be released for the next run.
	if err := f.db.Exec(`UPDATE tenants SET email = '' WHERE id = ?`, f.tenantID).Error; err != nil {
		t.Fatalf("blank email: %v", err)
	}
	cfg := &config.Config{
		Mail: config.MailConfig{Enabled: true, APIKey: "re_test", FromAddress: "billing@example.com"},
		Rent: config.RentConfig{ReminderInterval: time.Hour, ReminderBatch: 10},
	}
	nop := zap.NewNop()
	clk := clock.FixedClock{At: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	worker := NewWorker(Params{
		DB:       f.db,
		Log:      nop,
		Config:   cfg,
		Clock:    clk,
		Notifier: notifier.NewService(notifier.ServiceParam{DB: f.db, Log: nop, Clock: clk, Client: notifier.NewMailClient(cfg)}),
		Outbox:   events.NewOutbox(f.db, f.node),
	})

	id := f.insertInvoice(t, rentdomain.InvoiceStatusPending, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), nil)

	if err := worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := f.remindedAt(t, id); got != nil {
		t.Fatalf("expected claim rolled back, got reminded_at %v", got)
	}
}

func TestRunOnceRemindsAgainAfterCooldown(t *testing.T) {
	f := setupWorkerFixture(t)
	ctx := context.Background()

	stale := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)
	id := f.insertInvoice(t, rentdomain.InvoiceStatusPending, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), &stale)

	if err := f.worker.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	got := f.remindedAt(t, id)
	if got == nil || !got.After(stale) {
		t.Fatalf("expected reminded_at to advance past %v, got %v", stale, got)
	}
}
