package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics tracks invoice generation, payment recording, and the
// overdue reminder worker.
type BillingMetrics struct {
	invoicesGenerated *prometheus.CounterVec
	paymentsRecorded  *prometheus.CounterVec
	remindersSent     prometheus.Counter
	pendingInvoices   prometheus.Gauge
}

// NewBillingMetrics registers billing instruments on the shared registry.
func NewBillingMetrics(cfg Config, registry *prometheus.Registry) *BillingMetrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "roomstead"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	invoicesGenerated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "roomstead_rent_invoices_generated_total",
			Help:        "Rent invoices handled by the generator, by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // created | existing | failed
	)

	paymentsRecorded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "roomstead_rent_payments_recorded_total",
			Help:        "Payment attempts against rent invoices, by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // recorded | rejected | failed
	)

	remindersSent := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "roomstead_rent_reminders_sent_total",
			Help:        "Overdue invoice reminder emails sent.",
			ConstLabels: constLabels,
		},
	)

	pendingInvoices := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "roomstead_rent_invoices_pending",
			Help:        "Pending rent invoices observed by the reminder worker.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(invoicesGenerated, paymentsRecorded, remindersSent, pendingInvoices)

	return &BillingMetrics{
		invoicesGenerated: invoicesGenerated,
		paymentsRecorded:  paymentsRecorded,
		remindersSent:     remindersSent,
		pendingInvoices:   pendingInvoices,
	}
}

func (m *BillingMetrics) IncInvoiceGenerated(result string) {
	if m == nil {
		return
	}
	m.invoicesGenerated.WithLabelValues(result).Inc()
}

func (m *BillingMetrics) IncPaymentRecorded(result string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(result).Inc()
}

func (m *BillingMetrics) IncReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}

func (m *BillingMetrics) SetPendingInvoices(value int) {
	if m == nil {
		return
	}
	m.pendingInvoices.Set(float64(value))
}
