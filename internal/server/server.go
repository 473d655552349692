package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/observability"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerParams struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	ReviewerSvc reviewerdomain.Service
	StoreSvc    storedomain.Service
	ReviewSvc   reviewdomain.Service
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	reviewerSvc reviewerdomain.Service
	storeSvc    storedomain.Service
	reviewSvc   reviewdomain.Service
}

func New(p ServerParams) *Server {
	return &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		reviewerSvc: p.ReviewerSvc,
		storeSvc:    p.StoreSvc,
		reviewSvc:   p.ReviewSvc,
	}
}

func registerGin(s *Server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		observability.GinMiddleware(),
		s.authMiddleware(),
		ErrorHandlingMiddleware(),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := engine.Group("/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
	}

	api := engine.Group("/api")
	{
		api.GET("/stores", s.ListStores)
		api.GET("/stores/:id", s.GetStore)
		api.GET("/stores/:id/reviews", s.ListStoreReviews)
		api.GET("/reviews/:id", s.GetReview)

		authed := api.Group("", s.requireAuth())
		{
			authed.GET("/me", s.GetProfile)
			authed.PATCH("/me", s.UpdateProfile)
			authed.POST("/reviewers/:id/follow", s.FollowReviewer)
			authed.DELETE("/reviewers/:id/follow", s.UnfollowReviewer)

			authed.POST("/stores", s.RegisterStore)

			authed.POST("/reviews", s.CreateReview)
			authed.PUT("/reviews/:id", s.UpdateReview)
			authed.DELETE("/reviews/:id", s.DeleteReview)
			authed.GET("/reviews", s.ListMyReviews)
			authed.POST("/reviews/:id/helpful", s.MarkHelpful)
			authed.DELETE("/reviews/:id/helpful", s.UnmarkHelpful)
		}
	}

	admin := engine.Group("/admin", s.requireAdmin())
	{
		admin.GET("/reviews/pending", s.ListPendingReviews)
		admin.POST("/reviews/:id/approve", s.ApproveReview)
		admin.POST("/reviews/:id/reject", s.RejectReview)
		admin.PUT("/reviewers/:id/tier", s.AdminSetTier)
		admin.PUT("/reviewers/:id/role", s.AdminSetRole)
		admin.PUT("/reviewers/:id/phone-verification", s.AdminSetPhoneVerification)
	}

	return engine
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(New),
	fx.Provide(registerGin),
	fx.Invoke(run),
)
