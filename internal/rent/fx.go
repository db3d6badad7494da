package rent

import (
	"context"

	"github.com/roomstead/roomstead/internal/rent/reminder"
	"github.com/roomstead/roomstead/internal/rent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rent.service",
	fx.Provide(service.NewService),
	fx.Provide(reminder.NewWorker),
	fx.Invoke(runReminderWorker),
)

func runReminderWorker(lc fx.Lifecycle, worker *reminder.Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
