package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/logger"
	"github.com/platewise/platewise/internal/policy"
	"github.com/platewise/platewise/internal/review"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	"github.com/platewise/platewise/internal/reviewer"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	"github.com/platewise/platewise/internal/scheduler"
	"github.com/platewise/platewise/internal/scoring"
	"github.com/platewise/platewise/internal/store"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	"github.com/platewise/platewise/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services the policy jobs drive. The scheduler binary
		// carries no HTTP server.
		reviewer.Module,
		store.Module,
		review.Module,
		scoring.Module,
		policy.Module,

		fx.Invoke(AutoMigrate),
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}

func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&reviewerdomain.Reviewer{},
		&reviewerdomain.Follow{},
		&storedomain.Store{},
		&reviewdomain.Review{},
		&reviewdomain.Helpful{},
		&reviewdomain.StoreVisit{},
	)
}
