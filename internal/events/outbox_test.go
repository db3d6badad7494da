package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/roomstead/roomstead/internal/migration"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutboxTest(t *testing.T) (*gorm.DB, *Outbox, snowflake.ID) {
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
	return db, NewOutbox(db, node), node.Generate()
}

func countEvents(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM billing_events`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestPublishStoresEvent(t *testing.T) {
	db, outbox, propertyID := setupOutboxTest(t)

	err := outbox.Publish(context.Background(), Event{
		PropertyID: propertyID,
		Type:       EventInvoiceCreated,
		Payload:    map[string]any{"invoice_code": "INV001"},
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected 1 event, got %d", got)
	}
}

func TestPublishDedupesByKey(t *testing.T) {
	db, outbox, propertyID := setupOutboxTest(t)
	ctx := context.Background()

	event := Event{
		PropertyID: propertyID,
		Type:       EventPaymentRecorded,
		Payload:    map[string]any{"payment_code": "PMT001"},
		DedupeKey:  "payment_recorded:1",
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := outbox.Publish(ctx, event); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if got := countEvents(t, db); got != 1 {
		t.Fatalf("expected dedupe to keep 1 event, got %d", got)
	}
}

func TestPublishRejectsMissingType(t *testing.T) {
	_, outbox, propertyID := setupOutboxTest(t)

	err := outbox.Publish(context.Background(), Event{PropertyID: propertyID, Type: "  "})
	if err == nil {
		t.Fatalf("expected error for missing event type")
	}
}

func TestPublishTxRequiresTransaction(t *testing.T) {
	_, outbox, propertyID := setupOutboxTest(t)

	err := outbox.PublishTx(context.Background(), nil, Event{PropertyID: propertyID, Type: EventInvoiceCreated})
	if err == nil {
		t.Fatalf("expected error for nil transaction")
	}
}
