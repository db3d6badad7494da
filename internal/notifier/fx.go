package notifier

import "go.uber.org/fx"

var Module = fx.Module("notifier.service",
	fx.Provide(NewMailClient),
	fx.Provide(NewService),
)
