package audit

import (
	"github.com/roomstead/roomstead/internal/audit/repository"
	"github.com/roomstead/roomstead/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
