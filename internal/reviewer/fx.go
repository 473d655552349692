package reviewer

import (
	"github.com/platewise/platewise/internal/reviewer/repository"
	"github.com/platewise/platewise/internal/reviewer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reviewer.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
