package scoring

import (
	"github.com/platewise/platewise/internal/scoring/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scoring.service",
	fx.Provide(
		service.New,
	),
)
