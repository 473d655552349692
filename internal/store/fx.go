package store

import (
	"github.com/platewise/platewise/internal/store/repository"
	"github.com/platewise/platewise/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
