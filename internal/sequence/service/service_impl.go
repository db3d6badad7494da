package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	sequencedomain "github.com/roomstead/roomstead/internal/sequence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) sequencedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("sequence.service"),
	}
}

type counterRow struct {
	Seq    int64
	Prefix string
	Pad    int
}

// NextCode increments the counter for kind in a single upsert so two
// concurrent callers can never both observe a fresh row and issue the same
// number. A missing counter is created with seq = 1 and the given defaults.
func (s *Service) NextCode(ctx context.Context, kind, defaultPrefix string, defaultPad int) (string, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return "", sequencedomain.ErrInvalidKind
	}
	if defaultPad <= 0 {
		defaultPad = 3
	}

	var row counterRow
	err := s.db.WithContext(ctx).Raw(
		`INSERT INTO counters (kind, seq, prefix, pad, updated_at)
		 VALUES (?, 1, ?, ?, ?)
		 ON CONFLICT (kind) DO UPDATE
		 SET seq = counters.seq + 1, updated_at = excluded.updated_at
		 RETURNING seq, prefix, pad`,
		kind,
		defaultPrefix,
		defaultPad,
		time.Now().UTC(),
	).Scan(&row).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%0*d", row.Prefix, row.Pad, row.Seq), nil
}
