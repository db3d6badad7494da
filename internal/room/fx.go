package room

import (
	"github.com/roomstead/roomstead/internal/room/service"
	"go.uber.org/fx"
)

var Module = fx.Module("room.service",
	fx.Provide(service.NewService),
)
