package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/roomstead/roomstead/internal/ledger/domain"
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

func NewService(p ServiceParam) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

func (s *Service) CreateEntry(
	ctx context.Context,
	tx *gorm.DB,
	propertyID snowflake.ID,
	sourceType string,
	sourceID snowflake.ID,
	occurredAt time.Time,
	lines []ledgerdomain.LedgerEntryLine,
) error {
	if propertyID == 0 {
		return ledgerdomain.ErrInvalidProperty
	}
	if strings.TrimSpace(sourceType) == "" {
		return ledgerdomain.ErrInvalidSourceType
	}
	if sourceID == 0 {
		return ledgerdomain.ErrInvalidSourceID
	}
	if occurredAt.IsZero() {
		return ledgerdomain.ErrInvalidOccurredAt
	}
	if err := ledgerdomain.ValidateBalanced(lines); err != nil {
		return err
	}

	if tx != nil {
		return s.createEntryTx(ctx, tx, propertyID, sourceType, sourceID, occurredAt, lines)
	}
	return s.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return s.createEntryTx(ctx, inner, propertyID, sourceType, sourceID, occurredAt, lines)
	})
}

func (s *Service) createEntryTx(
	ctx context.Context,
	tx *gorm.DB,
	propertyID snowflake.ID,
	sourceType string,
	sourceID snowflake.ID,
	occurredAt time.Time,
	lines []ledgerdomain.LedgerEntryLine,
) error {
	now := time.Now().UTC()
	entryID := s.genID.Generate()

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (id, property_id, source_type, source_id, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entryID,
		propertyID,
		sourceType,
		sourceID,
		occurredAt,
		now,
	).Error; err != nil {
		return err
	}

	for _, line := range lines {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO ledger_entry_lines (id, ledger_entry_id, account_id, direction, amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.genID.Generate(),
			entryID,
			line.AccountID,
			line.Direction,
			line.Amount,
			now,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureAccount resolves the account id for a property code, creating the
// account on first use. The insert tolerates a concurrent create.
func (s *Service) EnsureAccount(ctx context.Context, tx *gorm.DB, propertyID snowflake.ID, code, name string) (snowflake.ID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	db := tx
	if db == nil {
		db = s.db
	}

	var accountID snowflake.ID
	if err := db.WithContext(ctx).Raw(
		`SELECT id FROM ledger_accounts WHERE property_id = ? AND code = ?`,
		propertyID,
		code,
	).Scan(&accountID).Error; err != nil {
		return 0, err
	}
	if accountID != 0 {
		return accountID, nil
	}

	if err := db.WithContext(ctx).Exec(
		`INSERT INTO ledger_accounts (id, property_id, code, name, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (property_id, code) DO NOTHING`,
		s.genID.Generate(),
		propertyID,
		code,
		name,
		time.Now().UTC(),
	).Error; err != nil {
		return 0, err
	}

	if err := db.WithContext(ctx).Raw(
		`SELECT id FROM ledger_accounts WHERE property_id = ? AND code = ?`,
		propertyID,
		code,
	).Scan(&accountID).Error; err != nil {
		return 0, err
	}
	if accountID == 0 {
		return 0, ledgerdomain.ErrInvalidAccount
	}
	return accountID, nil
}

func (s *Service) AccountBalance(ctx context.Context, propertyID snowflake.ID, code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, ledgerdomain.ErrInvalidAccount
	}

	var balance int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE l.direction WHEN 'debit' THEN l.amount ELSE -l.amount END), 0) AS balance
		 FROM ledger_entries le
		 JOIN ledger_entry_lines l ON l.ledger_entry_id = le.id
		 JOIN ledger_accounts a ON a.id = l.account_id
		 WHERE le.property_id = ? AND a.code = ?`,
		propertyID,
		code,
	).Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	return balance, nil
}
