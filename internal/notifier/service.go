package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/roomstead/roomstead/internal/cache"
	"github.com/roomstead/roomstead/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const contactTTL = 5 * time.Minute

// Contact is the cached slice of a tenant used for outbound mail.
type Contact struct {
	Name  string
	Email string
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Client *MailClient
}

// Service sends tenant-facing mail. Invoice and receipt notifications are
// best-effort: failures are logged and never surfaced to the billing path.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	client   *MailClient
	contacts cache.Cache[snowflake.ID, Contact]
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notifier.service"),
		client:   p.Client,
		contacts: cache.NewTTLCache[snowflake.ID, Contact](p.Clock),
	}
}

func (s *Service) contact(ctx context.Context, tenantID snowflake.ID) (Contact, error) {
	if c, ok := s.contacts.Get(tenantID); ok {
		return c, nil
	}
	var c Contact
	err := s.db.WithContext(ctx).
		Raw(`SELECT name, email FROM tenants WHERE id = ?`, tenantID).
		Scan(&c).Error
	if err != nil {
		return Contact{}, err
	}
	if c.Email == "" {
		return Contact{}, fmt.Errorf("tenant %d has no contact email", tenantID)
	}
	s.contacts.Set(tenantID, c, contactTTL)
	return c, nil
}

// InvoiceCreated emails the tenant that a new rent invoice exists.
func (s *Service) InvoiceCreated(ctx context.Context, tenantID snowflake.ID, invoiceCode, month string, total int64, dueDate time.Time) {
	if !s.client.Enabled() {
		return
	}
	c, err := s.contact(ctx, tenantID)
	if err != nil {
		s.log.Warn("skip invoice notification", zap.String("invoice_code", invoiceCode), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("Rent invoice %s for %s", invoiceCode, month)
	text := fmt.Sprintf(
		"Hi %s,\n\nYour rent invoice %s for %s is ready.\nAmount due: %d\nDue date: %s\n",
		c.Name, invoiceCode, month, total, dueDate.Format("2006-01-02"),
	)
	if _, err := s.client.Send(ctx, c.Email, subject, "", text); err != nil {
		s.log.Warn("failed to send invoice notification", zap.String("invoice_code", invoiceCode), zap.Error(err))
	}
}

// PaymentReceipt emails the tenant a confirmation of a recorded payment.
func (s *Service) PaymentReceipt(ctx context.Context, tenantID snowflake.ID, invoiceCode, paymentCode string, amount int64) {
	if !s.client.Enabled() {
		return
	}
	c, err := s.contact(ctx, tenantID)
	if err != nil {
		s.log.Warn("skip payment receipt", zap.String("payment_code", paymentCode), zap.Error(err))
		return
	}
	subject := fmt.Sprintf("Payment received for invoice %s", invoiceCode)
	text := fmt.Sprintf(
		"Hi %s,\n\nWe received your payment %s of %d for invoice %s. Thank you.\n",
		c.Name, paymentCode, amount, invoiceCode,
	)
	if _, err := s.client.Send(ctx, c.Email, subject, "", text); err != nil {
		s.log.Warn("failed to send payment receipt", zap.String("payment_code", paymentCode), zap.Error(err))
	}
}

// RentReminder emails the tenant about an overdue invoice. Unlike the other
// notifications the error is returned so the caller can retry later. With
// mail disabled the reminder still counts as sent.
func (s *Service) RentReminder(ctx context.Context, tenantID snowflake.ID, invoiceCode, month string, total int64, dueDate time.Time) error {
	if !s.client.Enabled() {
		return nil
	}
	c, err := s.contact(ctx, tenantID)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Reminder: rent invoice %s is overdue", invoiceCode)
	text := fmt.Sprintf(
		"Hi %s,\n\nRent invoice %s for %s was due on %s and is still unpaid.\nAmount due: %d\n",
		c.Name, invoiceCode, month, dueDate.Format("2006-01-02"), total,
	)
	_, err = s.client.Send(ctx, c.Email, subject, "", text)
	return err
}
