// Package reminder nags tenants about overdue rent invoices on a poll loop.
package reminder

import (
	"context"
	"time"

	"github.com/roomstead/roomstead/internal/clock"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/events"
	"github.com/roomstead/roomstead/internal/notifier"
	"github.com/roomstead/roomstead/internal/observability/metrics"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const reminderCooldown = 24 * time.Hour

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   *config.Config
	Clock    clock.Clock
	Notifier *notifier.Service
	Outbox   *events.Outbox
	Metrics  *metrics.BillingMetrics `optional:"true"`
}

type Worker struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	notifier *notifier.Service
	outbox   *events.Outbox
	metrics  *metrics.BillingMetrics
	interval time.Duration
	batch    int
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:       p.DB,
		log:      p.Log.Named("rent.reminder"),
		clock:    p.Clock,
		notifier: p.Notifier,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
		interval: p.Config.Rent.ReminderInterval,
		batch:    p.Config.Rent.ReminderBatch,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("reminder run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce sends at most one batch of reminders. An invoice is reminded when
// it is pending, past due, and not already reminded inside the cooldown.
func (w *Worker) RunOnce(ctx context.Context) error {
	now := w.clock.Now().UTC()
	cutoff := now.Add(-reminderCooldown)

	var invoices []rentdomain.RentInvoice
	err := w.db.WithContext(ctx).
		Where("status = ?", rentdomain.InvoiceStatusPending).
		Where("due_date < ?", now).
		Where("reminded_at IS NULL OR reminded_at < ?", cutoff).
		Order("due_date ASC, id ASC").
		Limit(w.batch).
		Find(&invoices).Error
	if err != nil {
		return err
	}

	var pending int64
	if err := w.db.WithContext(ctx).
		Model(&rentdomain.RentInvoice{}).
		Where("status = ?", rentdomain.InvoiceStatusPending).
		Count(&pending).Error; err == nil {
		w.metrics.SetPendingInvoices(int(pending))
	}

	for _, invoice := range invoices {
		if err := w.remind(ctx, invoice, now); err != nil {
			w.log.Warn("failed to remind",
				zap.String("invoice_code", invoice.InvoiceCode),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (w *Worker) remind(ctx context.Context, invoice rentdomain.RentInvoice, now time.Time) error {
	// Claim the invoice before mailing so concurrent workers cannot both
	// send. Zero rows means another worker got there first.
	res := w.db.WithContext(ctx).Exec(
		`UPDATE rent_invoices SET reminded_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND (reminded_at IS NULL OR reminded_at < ?)`,
		now, now, invoice.ID, rentdomain.InvoiceStatusPending, now.Add(-reminderCooldown),
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if err := w.notifier.RentReminder(ctx, invoice.TenantID, invoice.InvoiceCode, invoice.Month, invoice.Total, invoice.DueDate); err != nil {
		// Roll the claim back so the next run retries.
		if res := w.db.WithContext(ctx).Exec(
			`UPDATE rent_invoices SET reminded_at = ? WHERE id = ?`,
			invoice.RemindedAt, invoice.ID,
		); res.Error != nil {
			w.log.Warn("failed to roll back reminder claim",
				zap.String("invoice_code", invoice.InvoiceCode),
				zap.Error(res.Error),
			)
		}
		return err
	}

	w.metrics.IncReminderSent()
	if err := w.outbox.Publish(ctx, events.Event{
		PropertyID: invoice.PropertyID,
		Type:       events.EventReminderSent,
		Payload: map[string]any{
			"invoice_id":   invoice.ID.String(),
			"invoice_code": invoice.InvoiceCode,
			"month":        invoice.Month,
		},
		DedupeKey: "reminder_sent:" + invoice.ID.String() + ":" + now.Format("2006-01-02"),
	}); err != nil {
		w.log.Warn("failed to publish reminder event", zap.Error(err))
	}
	return nil
}
