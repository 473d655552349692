package policy

import (
	"github.com/platewise/platewise/internal/policy/service"
	"go.uber.org/fx"
)

var Module = fx.Module("policy.service",
	fx.Provide(
		service.New,
	),
)
