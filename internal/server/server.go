// Package server exposes the owner-facing REST API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/roomstead/roomstead/internal/audit/domain"
	"github.com/roomstead/roomstead/internal/config"
	mealdomain "github.com/roomstead/roomstead/internal/mealorder/domain"
	"github.com/roomstead/roomstead/internal/observability/logger"
	"github.com/roomstead/roomstead/internal/observability/metrics"
	"github.com/roomstead/roomstead/internal/observability/tracing"
	propertydomain "github.com/roomstead/roomstead/internal/property/domain"
	rentdomain "github.com/roomstead/roomstead/internal/rent/domain"
	roomdomain "github.com/roomstead/roomstead/internal/room/domain"
	tenantdomain "github.com/roomstead/roomstead/internal/tenant/domain"
	utilitydomain "github.com/roomstead/roomstead/internal/utilitybill/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServerParam struct {
	fx.In

	Config      *config.Config
	DB          *gorm.DB
	Log         *zap.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics `optional:"true"`
	PropertySvc propertydomain.Service
	RoomSvc     roomdomain.Service
	TenantSvc   tenantdomain.Service
	UtilitySvc  utilitydomain.Service
	MealSvc     mealdomain.Service
	RentSvc     rentdomain.Service
	AuditSvc    auditdomain.Service
}

type Server struct {
	cfg         *config.Config
	db          *gorm.DB
	log         *zap.Logger
	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics
	propertySvc propertydomain.Service
	roomSvc     roomdomain.Service
	tenantSvc   tenantdomain.Service
	utilitySvc  utilitydomain.Service
	mealSvc     mealdomain.Service
	rentSvc     rentdomain.Service
	auditSvc    auditdomain.Service

	generateLimiter *rateLimiter
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:         p.Config,
		db:          p.DB,
		log:         p.Log.Named("server"),
		registry:    p.Registry,
		httpMetrics: p.HTTPMetrics,
		propertySvc: p.PropertySvc,
		roomSvc:     p.RoomSvc,
		tenantSvc:   p.TenantSvc,
		utilitySvc:  p.UtilitySvc,
		mealSvc:     p.MealSvc,
		rentSvc:     p.RentSvc,
		auditSvc:    p.AuditSvc,

		// Invoice generation scans every room; keep abusive clients off it.
		generateLimiter: newRateLimiter(10, time.Minute),
	}
}

// Engine builds the gin engine with middleware and all routes registered.
func (s *Server) Engine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	if s.httpMetrics != nil {
		engine.Use(metrics.GinMiddleware(s.httpMetrics))
	}

	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.RegisterRoutes(engine)
	return engine
}

// RegisterRoutes attaches the owner API routes.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	owner := engine.Group("/api/owner")

	owner.POST("/properties", s.CreateProperty)
	owner.GET("/properties", s.ListProperties)
	owner.GET("/properties/:id", s.GetPropertyByID)
	owner.PATCH("/properties/:id", s.UpdateProperty)
	owner.GET("/properties/:id/rooms", s.ListPropertyRooms)

	owner.POST("/rooms", s.CreateRoom)
	owner.GET("/rooms", s.ListRooms)
	owner.GET("/rooms/:id", s.GetRoomByID)
	owner.PATCH("/rooms/:id", s.UpdateRoom)
	owner.GET("/rooms/:id/occupants", s.ListOccupants)
	owner.POST("/rooms/:id/occupants", s.AssignOccupant)
	owner.DELETE("/rooms/:id/occupants/:tenantID", s.MoveOutOccupant)
	owner.POST("/rooms/:id/occupants/:tenantID/transfer", s.TransferOccupant)

	owner.POST("/tenants", s.CreateTenant)
	owner.GET("/tenants", s.ListTenants)
	owner.GET("/tenants/:id", s.GetTenantByID)

	owner.POST("/utility-bills", s.CreateUtilityBill)
	owner.GET("/utility-bills", s.ListUtilityBills)
	owner.POST("/utility-bills/:id/paid", s.MarkUtilityBillPaid)

	owner.POST("/meal-orders", s.CreateMealOrder)
	owner.GET("/meal-orders", s.ListMealOrders)
	owner.POST("/meal-orders/:id/delivered", s.MarkMealOrderDelivered)
	owner.POST("/meal-orders/:id/cancel", s.CancelMealOrder)

	owner.POST("/rent/generate", s.GenerateInvoices)
	owner.GET("/rent/invoices", s.ListInvoices)
	owner.GET("/rent/payments", s.ListPayments)
	owner.POST("/rent/receipt", s.RecordPayment)

	owner.GET("/audit-logs", s.ListAuditLogs)
}

// Health reports liveness and database reachability.
func (s *Server) Health(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
