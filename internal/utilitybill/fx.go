package utilitybill

import (
	"github.com/roomstead/roomstead/internal/utilitybill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("utilitybill.service",
	fx.Provide(service.NewService),
)
