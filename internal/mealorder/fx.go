package mealorder

import (
	"github.com/roomstead/roomstead/internal/mealorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mealorder.service",
	fx.Provide(service.NewService),
)
