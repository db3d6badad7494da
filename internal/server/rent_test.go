package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditrepository "github.com/roomstead/roomstead/internal/audit/repository"
	auditservice "github.com/roomstead/roomstead/internal/audit/service"
	"github.com/roomstead/roomstead/internal/clock"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/events"
	ledgerservice "github.com/roomstead/roomstead/internal/ledger/service"
	mealservice "github.com/roomstead/roomstead/internal/mealorder/service"
	"github.com/roomstead/roomstead/internal/migration"
	"github.com/roomstead/roomstead/internal/notifier"
	propertyservice "github.com/roomstead/roomstead/internal/property/service"
	rentservice "github.com/roomstead/roomstead/internal/rent/service"
	roomservice "github.com/roomstead/roomstead/internal/room/service"
	sequenceservice "github.com/roomstead/roomstead/internal/sequence/service"
	tenantservice "github.com/roomstead/roomstead/internal/tenant/service"
	utilityservice "github.com/roomstead/roomstead/internal/utilitybill/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serverFixture struct {
	engine *gin.Engine
	db     *gorm.DB
	node   *snowflake.Node

	propertyID snowflake.ID
	roomID     snowflake.ID
	tenantID   snowflake.ID
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		Rent: config.RentConfig{MealStatuses: []string{"delivered"}},
	}

	propertySvc := propertyservice.NewService(propertyservice.ServiceParam{DB: db, Log: nop, GenID: node})
	tenantSvc := tenantservice.NewService(tenantservice.ServiceParam{DB: db, Log: nop, GenID: node})
	auditSvc := auditservice.NewService(auditservice.ServiceParam{DB: db, Log: nop, GenID: node, Repository: auditrepository.Provide()})
	roomSvc := roomservice.NewService(roomservice.ServiceParam{
		DB:          db,
		Log:         nop,
		GenID:       node,
		PropertySvc: propertySvc,
		TenantSvc:   tenantSvc,
		Audit:       auditSvc,
		Outbox:      events.NewOutbox(db, node),
	})
	utilitySvc := utilityservice.NewService(utilityservice.ServiceParam{DB: db, Log: nop, GenID: node, PropertySvc: propertySvc})
	mealSvc := mealservice.NewService(mealservice.ServiceParam{DB: db, Log: nop, GenID: node, TenantSvc: tenantSvc})
	rentSvc := rentservice.NewService(rentservice.ServiceParam{
		DB:         db,
		Log:        nop,
		GenID:      node,
		Config:     cfg,
		Clock:      clk,
		Sequence:   sequenceservice.NewService(sequenceservice.ServiceParam{DB: db, Log: nop}),
		UtilitySvc: utilitySvc,
		MealSvc:    mealSvc,
		Ledger:     ledgerservice.NewService(ledgerservice.ServiceParam{DB: db, Log: nop, GenID: node}),
		Audit:      auditSvc,
		Outbox:     events.NewOutbox(db, node),
		Notifier:   notifier.NewService(notifier.ServiceParam{DB: db, Log: nop, Clock: clk, Client: notifier.NewMailClient(cfg)}),
	})

	srv := &Server{
		cfg:             cfg,
		db:              db,
		log:             nop,
		propertySvc:     propertySvc,
		roomSvc:         roomSvc,
		tenantSvc:       tenantSvc,
		utilitySvc:      utilitySvc,
		mealSvc:         mealSvc,
		rentSvc:         rentSvc,
		auditSvc:        auditSvc,
		generateLimiter: newRateLimiter(100, time.Minute),
	}
	engine := gin.New()
	srv.RegisterRoutes(engine)

	f := &serverFixture{
		engine:     engine,
		db:         db,
		node:       node,
		propertyID: node.Generate(),
		roomID:     node.Generate(),
		tenantID:   node.Generate(),
	}

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	exec := func(query string, args ...any) {
		t.Helper()
		if err := db.Exec(query, args...).Error; err != nil {
			t.Fatalf("exec %q: %v", query, err)
		}
	}
	exec(`INSERT INTO properties (id, name, address, is_active, created_at, updated_at) VALUES (?, 'Kost Melati', '', TRUE, ?, ?)`,
		f.propertyID, now, now)
	exec(`INSERT INTO rooms (id, property_id, label, base_rent, capacity, is_active, created_at, updated_at) VALUES (?, ?, 'A1', 10000, 2, TRUE, ?, ?)`,
		f.roomID, f.propertyID, now, now)
	exec(`INSERT INTO tenants (id, name, email, created_at, updated_at) VALUES (?, 'Andi', 'andi@example.com', ?, ?)`,
		f.tenantID, now, now)
	exec(`INSERT INTO room_occupants (id, room_id, tenant_id, since, created_at) VALUES (?, ?, ?, ?, ?)`,
		node.Generate(), f.roomID, f.tenantID, now, now)
	return f
}

func (f *serverFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %q", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestGenerateInvoicesEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.do(http.MethodPost, "/api/owner/rent/generate", `{"month":"2024-05","due_date":"2024-05-15"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if got := data["created_count"].(float64); got != 1 {
		t.Fatalf("expected created_count 1, got %v", got)
	}

	// Re-running the month is idempotent.
	rec = f.do(http.MethodPost, "/api/owner/rent/generate", `{"month":"2024-05","due_date":"2024-05-15"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on rerun, got %d", rec.Code)
	}
	data = decodeBody(t, rec)["data"].(map[string]any)
	if got := data["created_count"].(float64); got != 0 {
		t.Fatalf("expected created_count 0 on rerun, got %v", got)
	}
}

func TestGenerateInvoicesRejectsBadMonth(t *testing.T) {
	f := setupServer(t)

	rec := f.do(http.MethodPost, "/api/owner/rent/generate", `{"month":"2024-13","due_date":"2024-05-15"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_month" {
		t.Fatalf("expected invalid_month, got %q", code)
	}
}

func TestRecordPaymentEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.do(http.MethodPost, "/api/owner/rent/generate", `{"month":"2024-05","due_date":"2024-05-15"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	invoices := data["invoices"].([]any)
	invoice := invoices[0].(map[string]any)
	invoiceID := invoice["id"].(string)
	total := int64(invoice["total"].(float64))

	rec = f.do(http.MethodPost, "/api/owner/rent/receipt",
		fmt.Sprintf(`{"invoice_id":%q,"amount_paid":%d,"payment_method":"cash"}`, invoiceID, total-1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for partial payment, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "amount_mismatch" {
		t.Fatalf("expected amount_mismatch, got %q", code)
	}

	rec = f.do(http.MethodPost, "/api/owner/rent/receipt",
		fmt.Sprintf(`{"invoice_id":%q,"amount_paid":%d,"payment_method":"cash"}`, invoiceID, total))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodPost, "/api/owner/rent/receipt",
		fmt.Sprintf(`{"invoice_id":%q,"amount_paid":%d,"payment_method":"cash"}`, invoiceID, total))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for double payment, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invoice_already_paid" {
		t.Fatalf("expected invoice_already_paid, got %q", code)
	}
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	f := setupServer(t)

	rec := f.do(http.MethodPost, "/api/owner/rent/receipt",
		fmt.Sprintf(`{"invoice_id":%q,"amount_paid":10000,"payment_method":"cash"}`, f.node.Generate().String()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListInvoicesEndpoint(t *testing.T) {
	f := setupServer(t)

	if rec := f.do(http.MethodPost, "/api/owner/rent/generate", `{"month":"2024-05","due_date":"2024-05-15"}`); rec.Code != http.StatusOK {
		t.Fatalf("generate: %d", rec.Code)
	}

	rec := f.do(http.MethodGet, "/api/owner/rent/invoices?month=2024-05", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(data))
	}

	rec = f.do(http.MethodGet, "/api/owner/rent/invoices?month=2024-06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data, _ := decodeBody(t, rec)["data"].([]any); len(data) != 0 {
		t.Fatalf("expected no invoices for 2024-06, got %d", len(data))
	}
}
