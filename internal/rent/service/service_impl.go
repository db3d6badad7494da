package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/roomstead/roomstead/internal/audit/domain"
	"github.com/roomstead/roomstead/internal/clock"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/events"
	ledgerdomain "github.com/roomstead/roomstead/internal/ledger/domain"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
	"github.com/roomstead/roomstead/internal/notifier"
	"github.com/roomstead/roomstead/internal/observability/metrics"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
	sequencedomain "github.com/roomstead/roomstead/internal/sequence/domain"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
	"github.com/roomstead/roomstead/pkg/month"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	invoiceCodeKind   = "invoice"
	invoiceCodePrefix = "INV"
	invoiceCodePad    = 3
	paymentCodeKind   = "payment"
	paymentCodePrefix = "PMT"
	paymentCodePad    = 3
	dueDateLayout     = "2006-01-02"
	invoiceTargetType = "rent_invoice"
	paymentTargetType = "payment"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Config     *config.Config
	Clock      clock.Clock
	Sequence   sequencedomain.Service
	UtilitySvc utilitydomain.Service
	MealSvc    mealdomain.Service
	Ledger     ledgerdomain.Service
	Audit      auditdomain.Service
	Outbox     *events.Outbox
	Notifier   *notifier.Service
	Metrics    *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	cfg        *config.Config
	clock      clock.Clock
	sequence   sequencedomain.Service
	utilitySvc utilitydomain.Service
	mealSvc    mealdomain.Service
	ledger     ledgerdomain.Service
	audit      auditdomain.Service
	outbox     *events.Outbox
	notifier   *notifier.Service
	metrics    *metrics.BillingMetrics
}

func NewService(p ServiceParam) rentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("rent.service"),
		genID:      p.GenID,
		cfg:        p.Config,
		clock:      p.Clock,
		sequence:   p.Sequence,
		utilitySvc: p.UtilitySvc,
		mealSvc:    p.MealSvc,
		ledger:     p.Ledger,
		audit:      p.Audit,
		outbox:     p.Outbox,
		notifier:   p.Notifier,
		metrics:    p.Metrics,
	}
}

// resolveAssignments lists one row per occupied seat in an active room.
// Ordering follows room id then assignment insertion order.
func (s *Service) resolveAssignments(ctx context.Context) ([]rentdomain.Assignment, error) {
	var rows []struct {
		TenantID   snowflake.ID
		PropertyID snowflake.ID
		RoomID     snowflake.ID
		BaseRent   int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT o.tenant_id, r.property_id, r.id AS room_id, r.base_rent
		 FROM rooms r
		 JOIN room_occupants o ON o.room_id = r.id
		 WHERE r.is_active
		 ORDER BY r.id, o.id`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]rentdomain.Assignment, 0, len(rows))
	for _, row := range rows {
		rent := row.BaseRent
		if rent < 0 {
			rent = 0
		}
		assignments = append(assignments, rentdomain.Assignment{
			TenantID:   row.TenantID,
			PropertyID: row.PropertyID,
			RoomID:     row.RoomID,
			BaseRent:   rent,
		})
	}
	return assignments, nil
}

// roundDiv divides non-negative integers rounding half up.
func roundDiv(total, n int64) int64 {
	if n <= 0 {
		return total
	}
	return (total + n/2) / n
}

func (s *Service) mealStatuses() []mealdomain.OrderStatus {
	statuses := make([]mealdomain.OrderStatus, 0, len(s.cfg.Rent.MealStatuses))
	for _, raw := range s.cfg.Rent.MealStatuses {
		statuses = append(statuses, mealdomain.OrderStatus(raw))
	}
	return statuses
}

func (s *Service) GenerateInvoices(ctx context.Context, req rentdomain.GenerateInvoicesRequest) (rentdomain.GenerateInvoicesResponse, error) {
	billMonth, err := month.Parse(req.Month)
	if err != nil {
		return rentdomain.GenerateInvoicesResponse{}, rentdomain.ErrInvalidMonth
	}
	dueDate, err := time.ParseInLocation(dueDateLayout, req.DueDate, time.UTC)
	if err != nil {
		return rentdomain.GenerateInvoicesResponse{}, rentdomain.ErrInvalidDueDate
	}
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	if dueDate.Before(today) {
		return rentdomain.GenerateInvoicesResponse{}, rentdomain.ErrInvalidDueDate
	}

	assignments, err := s.resolveAssignments(ctx)
	if err != nil {
		return rentdomain.GenerateInvoicesResponse{}, err
	}
	resp := rentdomain.GenerateInvoicesResponse{Invoices: []rentdomain.RentInvoice{}}
	if len(assignments) == 0 {
		return resp, nil
	}

	tenantsPerProperty := make(map[snowflake.ID]int64)
	propertyIDs := make([]snowflake.ID, 0)
	for _, a := range assignments {
		if tenantsPerProperty[a.PropertyID] == 0 {
			propertyIDs = append(propertyIDs, a.PropertyID)
		}
		tenantsPerProperty[a.PropertyID]++
	}

	utilityTotals, err := s.utilitySvc.TotalsByProperty(ctx, billMonth.String(), propertyIDs)
	if err != nil {
		return rentdomain.GenerateInvoicesResponse{}, err
	}
	mealTotals, err := s.mealSvc.TotalsByTenant(ctx, billMonth.String(), s.mealStatuses())
	if err != nil {
		return rentdomain.GenerateInvoicesResponse{}, err
	}

	// Each invoice commits on its own. A failure mid-loop leaves earlier
	// invoices in place and re-running the month picks up the rest.
	for _, a := range assignments {
		tenantCount := tenantsPerProperty[a.PropertyID]
		if tenantCount < 1 {
			tenantCount = 1
		}
		utilityShare := roundDiv(utilityTotals[a.PropertyID], tenantCount)
		mealCost := mealTotals[a.TenantID]
		total := a.BaseRent + utilityShare + mealCost

		invoice, created, err := s.createInvoice(ctx, a, billMonth.String(), a.BaseRent, utilityShare, mealCost, total, dueDate)
		if err != nil {
			s.metrics.IncInvoiceGenerated("error")
			return rentdomain.GenerateInvoicesResponse{}, err
		}
		if created {
			resp.CreatedCount++
			s.metrics.IncInvoiceGenerated("created")
			s.notifier.InvoiceCreated(ctx, invoice.TenantID, invoice.InvoiceCode, invoice.Month, invoice.Total, invoice.DueDate)
		} else {
			s.metrics.IncInvoiceGenerated("skipped")
		}
		resp.Invoices = append(resp.Invoices, invoice)
	}
	return resp, nil
}

// createInvoice inserts one invoice, treating a (tenant, month) conflict as
// idempotent success by returning the stored row.
func (s *Service) createInvoice(
	ctx context.Context,
	a rentdomain.Assignment,
	monthStr string,
	baseRent, utilityShare, mealCost, total int64,
	dueDate time.Time,
) (rentdomain.RentInvoice, bool, error) {
	existing, err := s.invoiceByTenantMonth(ctx, a.TenantID, monthStr)
	if err != nil {
		return rentdomain.RentInvoice{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	code, err := s.sequence.NextCode(ctx, invoiceCodeKind, invoiceCodePrefix, invoiceCodePad)
	if err != nil {
		return rentdomain.RentInvoice{}, false, err
	}

	now := s.clock.Now().UTC()
	invoice := rentdomain.RentInvoice{
		ID:           s.genID.Generate(),
		InvoiceCode:  code,
		TenantID:     a.TenantID,
		PropertyID:   a.PropertyID,
		RoomID:       a.RoomID,
		Month:        monthStr,
		BaseRent:     baseRent,
		UtilityShare: utilityShare,
		MealCost:     mealCost,
		Total:        total,
		Status:       rentdomain.InvoiceStatusPending,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO rent_invoices
			 (id, invoice_code, tenant_id, property_id, room_id, month, base_rent, utility_share, meal_cost, total, status, due_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (tenant_id, month) DO NOTHING`,
			invoice.ID, invoice.InvoiceCode, invoice.TenantID, invoice.PropertyID, invoice.RoomID,
			invoice.Month, invoice.BaseRent, invoice.UtilityShare, invoice.MealCost, invoice.Total,
			invoice.Status, invoice.DueDate, invoice.CreatedAt, invoice.UpdatedAt,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent generate for the same tenant.
			return nil
		}
		created = true

		if total > 0 {
			if err := s.postInvoiceLedger(ctx, tx, invoice); err != nil {
				return err
			}
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			PropertyID: invoice.PropertyID,
			Type:       events.EventInvoiceCreated,
			Payload: events.InvoicePayload{
				InvoiceID:   invoice.ID.String(),
				InvoiceCode: invoice.InvoiceCode,
				TenantID:    invoice.TenantID.String(),
				Month:       invoice.Month,
				Total:       invoice.Total,
			}.ToMap(),
			DedupeKey: fmt.Sprintf("invoice_created:%s:%s", invoice.TenantID.String(), invoice.Month),
		})
	})
	if err != nil {
		return rentdomain.RentInvoice{}, false, err
	}
	if !created {
		stored, err := s.invoiceByTenantMonth(ctx, a.TenantID, monthStr)
		if err != nil {
			return rentdomain.RentInvoice{}, false, err
		}
		if stored == nil {
			return rentdomain.RentInvoice{}, false, rentdomain.ErrInvoiceNotFound
		}
		return *stored, false, nil
	}

	// Recorded outside the transaction so an audit insert failure cannot
	// abort the invoice and outbox writes.
	s.audit.Record(ctx, nil, auditdomain.RecordInput{
		PropertyID: &invoice.PropertyID,
		ActorType:  auditdomain.ActorTypeSystem,
		Action:     "rent.invoice_generated",
		TargetType: invoiceTargetType,
		TargetID:   invoice.ID.String(),
		Metadata: map[string]interface{}{
			"invoice_code": invoice.InvoiceCode,
			"tenant_id":    invoice.TenantID.String(),
			"month":        invoice.Month,
			"total":        invoice.Total,
		},
	})
	return invoice, true, nil
}

func (s *Service) postInvoiceLedger(ctx context.Context, tx *gorm.DB, invoice rentdomain.RentInvoice) error {
	receivable, err := s.ledger.EnsureAccount(ctx, tx, invoice.PropertyID, ledgerdomain.AccountCodeAccountsReceivable, "Accounts receivable")
	if err != nil {
		return err
	}
	revenue, err := s.ledger.EnsureAccount(ctx, tx, invoice.PropertyID, ledgerdomain.AccountCodeRentRevenue, "Rent revenue")
	if err != nil {
		return err
	}
	return s.ledger.CreateEntry(ctx, tx, invoice.PropertyID, ledgerdomain.SourceTypeRentInvoice, invoice.ID, invoice.CreatedAt,
		[]ledgerdomain.LedgerEntryLine{
			{AccountID: receivable, Direction: ledgerdomain.LedgerEntryDirectionDebit, Amount: invoice.Total},
			{AccountID: revenue, Direction: ledgerdomain.LedgerEntryDirectionCredit, Amount: invoice.Total},
		})
}

func (s *Service) invoiceByTenantMonth(ctx context.Context, tenantID snowflake.ID, monthStr string) (*rentdomain.RentInvoice, error) {
	var invoices []rentdomain.RentInvoice
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND month = ?", tenantID, monthStr).
		Limit(1).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return &invoices[0], nil
}

func (s *Service) ListInvoices(ctx context.Context, req rentdomain.ListInvoicesRequest) ([]rentdomain.RentInvoice, error) {
	q := s.db.WithContext(ctx).Model(&rentdomain.RentInvoice{})
	if req.PropertyID != "" {
		id, err := snowflake.ParseString(req.PropertyID)
		if err != nil {
			return nil, rentdomain.ErrInvalidProperty
		}
		q = q.Where("property_id = ?", id)
	}
	if req.TenantID != "" {
		id, err := snowflake.ParseString(req.TenantID)
		if err != nil {
			return nil, rentdomain.ErrInvalidTenant
		}
		q = q.Where("tenant_id = ?", id)
	}
	if req.Month != "" {
		m, err := month.Parse(req.Month)
		if err != nil {
			return nil, rentdomain.ErrInvalidMonth
		}
		q = q.Where("month = ?", m.String())
	}
	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	var invoices []rentdomain.RentInvoice
	if err := q.Order("created_at DESC, id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Service) ListPayments(ctx context.Context, req rentdomain.ListPaymentsRequest) ([]rentdomain.Payment, error) {
	q := s.db.WithContext(ctx).
		Table("payments AS p").
		Select("p.*").
		Joins("JOIN rent_invoices i ON i.id = p.invoice_id")
	if req.PropertyID != "" {
		id, err := snowflake.ParseString(req.PropertyID)
		if err != nil {
			return nil, rentdomain.ErrInvalidProperty
		}
		q = q.Where("i.property_id = ?", id)
	}
	if req.TenantID != "" {
		id, err := snowflake.ParseString(req.TenantID)
		if err != nil {
			return nil, rentdomain.ErrInvalidTenant
		}
		q = q.Where("i.tenant_id = ?", id)
	}
	if req.Month != "" {
		m, err := month.Parse(req.Month)
		if err != nil {
			return nil, rentdomain.ErrInvalidMonth
		}
		q = q.Where("i.month = ?", m.String())
	}

	var payments []rentdomain.Payment
	if err := q.Order("p.payment_date DESC, p.id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Service) PayInvoice(ctx context.Context, req rentdomain.PayInvoiceRequest) (rentdomain.PayInvoiceResponse, error) {
	invoiceID, err := snowflake.ParseString(req.InvoiceID)
	if err != nil || invoiceID == 0 {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrInvalidInvoiceID
	}
	method := rentdomain.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrInvalidMethod
	}
	if req.AmountPaid < 0 {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrInvalidAmount
	}

	var invoices []rentdomain.RentInvoice
	if err := s.db.WithContext(ctx).Where("id = ?", invoiceID).Limit(1).Find(&invoices).Error; err != nil {
		return rentdomain.PayInvoiceResponse{}, err
	}
	if len(invoices) == 0 {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrInvoiceNotFound
	}
	invoice := invoices[0]
	if invoice.Status == rentdomain.InvoiceStatusPaid {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrInvoiceAlreadyPaid
	}
	if req.AmountPaid != invoice.Total {
		return rentdomain.PayInvoiceResponse{}, rentdomain.ErrAmountMismatch
	}

	code, err := s.sequence.NextCode(ctx, paymentCodeKind, paymentCodePrefix, paymentCodePad)
	if err != nil {
		return rentdomain.PayInvoiceResponse{}, err
	}

	now := s.clock.Now().UTC()
	payment := rentdomain.Payment{
		ID:            s.genID.Generate(),
		PaymentCode:   code,
		InvoiceID:     invoice.ID,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: method,
		PaymentDate:   now,
		CreatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE rent_invoices SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			rentdomain.InvoiceStatusPaid, now, invoice.ID, rentdomain.InvoiceStatusPending,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return rentdomain.ErrInvoiceAlreadyPaid
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if payment.AmountPaid > 0 {
			if err := s.postPaymentLedger(ctx, tx, invoice, payment); err != nil {
				return err
			}
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			PropertyID: invoice.PropertyID,
			Type:       events.EventPaymentRecorded,
			Payload: events.PaymentPayload{
				PaymentID:   payment.ID.String(),
				InvoiceID:   invoice.ID.String(),
				PaymentCode: payment.PaymentCode,
				Amount:      payment.AmountPaid,
				Method:      string(payment.PaymentMethod),
			}.ToMap(),
			DedupeKey: "payment_recorded:" + invoice.ID.String(),
		})
	})
	if err != nil {
		s.metrics.IncPaymentRecorded("error")
		return rentdomain.PayInvoiceResponse{}, err
	}

	invoice.Status = rentdomain.InvoiceStatusPaid
	invoice.UpdatedAt = now
	s.audit.Record(ctx, nil, auditdomain.RecordInput{
		PropertyID: &invoice.PropertyID,
		ActorType:  auditdomain.ActorTypeOwner,
		Action:     "rent.payment_recorded",
		TargetType: paymentTargetType,
		TargetID:   payment.ID.String(),
		Metadata: map[string]interface{}{
			"payment_code": payment.PaymentCode,
			"invoice_code": invoice.InvoiceCode,
			"amount":       payment.AmountPaid,
			"method":       string(payment.PaymentMethod),
		},
	})
	s.metrics.IncPaymentRecorded("recorded")
	s.notifier.PaymentReceipt(ctx, invoice.TenantID, invoice.InvoiceCode, payment.PaymentCode, payment.AmountPaid)

	return rentdomain.PayInvoiceResponse{Payment: payment, Invoice: invoice}, nil
}

func (s *Service) postPaymentLedger(ctx context.Context, tx *gorm.DB, invoice rentdomain.RentInvoice, payment rentdomain.Payment) error {
	cash, err := s.ledger.EnsureAccount(ctx, tx, invoice.PropertyID, ledgerdomain.AccountCodeCash, "Cash")
	if err != nil {
		return err
	}
	receivable, err := s.ledger.EnsureAccount(ctx, tx, invoice.PropertyID, ledgerdomain.AccountCodeAccountsReceivable, "Accounts receivable")
	if err != nil {
		return err
	}
	return s.ledger.CreateEntry(ctx, tx, invoice.PropertyID, ledgerdomain.SourceTypePayment, payment.ID, payment.PaymentDate,
		[]ledgerdomain.LedgerEntryLine{
			{AccountID: cash, Direction: ledgerdomain.LedgerEntryDirectionDebit, Amount: payment.AmountPaid},
			{AccountID: receivable, Direction: ledgerdomain.LedgerEntryDirectionCredit, Amount: payment.AmountPaid},
		})
}
