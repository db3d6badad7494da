package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/roomstead/roomstead/internal/audit"
	"github.com/roomstead/roomstead/internal/clock"
	"github.com/roomstead/roomstead/internal/config"
	"github.com/roomstead/roomstead/internal/events"
	"github.com/roomstead/roomstead/internal/ledger"
	"github.com/roomstead/roomstead/internal/mealorder"
	"github.com/roomstead/roomstead/internal/migration"
	"github.com/roomstead/roomstead/internal/notifier"
	"github.com/roomstead/roomstead/internal/observability"
	"github.com/roomstead/roomstead/internal/property"
	"github.com/roomstead/roomstead/internal/rent"
	"github.com/roomstead/roomstead/internal/room"
	"github.com/roomstead/roomstead/internal/seed"
	"github.com/roomstead/roomstead/internal/sequence"
	"github.com/roomstead/roomstead/internal/server"
	"github.com/roomstead/roomstead/internal/tenant"
	"github.com/roomstead/roomstead/internal/utilitybill"
	"github.com/roomstead/roomstead/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		fx.Provide(events.NewOutbox),

		fx.Invoke(func(conn *gorm.DB, cfg *config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Bootstrap.SeedDemoData {
				return seed.EnsureDemoData(conn)
			}
			return nil
		}),

		sequence.Module,
		property.Module,
		room.Module,
		tenant.Module,
		utilitybill.Module,
		mealorder.Module,
		ledger.Module,
		audit.Module,
		notifier.Module,
		rent.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
