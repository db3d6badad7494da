package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/roomstead/roomstead/internal/migration"
	sequencedomain "github.com/roomstead/roomstead/internal/sequence/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestNextCodeCreatesCounter(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{db: db, log: zap.NewNop()}

	code, err := svc.NextCode(context.Background(), "invoice", "INV", 3)
	if err != nil {
		t.Fatalf("next code: %v", err)
	}
	if code != "INV001" {
		t.Fatalf("expected INV001, got %q", code)
	}
}

func TestNextCodeIncrements(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{db: db, log: zap.NewNop()}
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		code, err := svc.NextCode(ctx, "invoice", "INV", 3)
		if err != nil {
			t.Fatalf("next code %d: %v", i, err)
		}
		want := fmt.Sprintf("INV%03d", i)
		if code != want {
			t.Fatalf("expected %q, got %q", want, code)
		}
	}
}

func TestNextCodeKeepsStoredDefaults(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{db: db, log: zap.NewNop()}
	ctx := context.Background()

	if _, err := svc.NextCode(ctx, "payment", "PMT", 5); err != nil {
		t.Fatalf("first code: %v", err)
	}
	// Later callers pass different defaults; the stored prefix and pad win.
	code, err := svc.NextCode(ctx, "payment", "XXX", 2)
	if err != nil {
		t.Fatalf("second code: %v", err)
	}
	if code != "PMT00002" {
		t.Fatalf("expected PMT00002, got %q", code)
	}
}

func TestNextCodeIndependentKinds(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{db: db, log: zap.NewNop()}
	ctx := context.Background()

	if _, err := svc.NextCode(ctx, "invoice", "INV", 3); err != nil {
		t.Fatalf("invoice code: %v", err)
	}
	code, err := svc.NextCode(ctx, "payment", "PMT", 3)
	if err != nil {
		t.Fatalf("payment code: %v", err)
	}
	if code != "PMT001" {
		t.Fatalf("expected PMT001, got %q", code)
	}
}

func TestNextCodeRejectsEmptyKind(t *testing.T) {
	db := setupSequenceTestDB(t)
	svc := &Service{db: db, log: zap.NewNop()}

	if _, err := svc.NextCode(context.Background(), "  ", "INV", 3); !errors.Is(err, sequencedomain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
