package review

import (
	"github.com/platewise/platewise/internal/review/repository"
	"github.com/platewise/platewise/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(
		repository.Provide,
		repository.ProvideHelpful,
		repository.ProvideVisit,
		service.New,
	),
)
