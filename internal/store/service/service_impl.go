package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/store/domain"
	"github.com/platewise/platewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Store{}, domain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	store := domain.Store{
		ID:         s.genID.Generate(),
		Name:       name,
		CategoryID: req.CategoryID,
		RegionID:   req.RegionID,
		Address:    req.Address,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Blind:      true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &store); err != nil {
		return domain.Store{}, err
	}

	s.log.Info("store registered",
		zap.String("store_id", store.ID.String()),
		zap.String("name", store.Name),
	)
	return store, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.View, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || storeID == 0 {
		return domain.View{}, domain.ErrInvalidID
	}

	store, err := s.repo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.View{}, err
	}
	if store == nil {
		return domain.View{}, domain.ErrNotFound
	}
	return store.ToView(), nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	stores, total, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return domain.ListResponse{}, err
	}

	views := make([]domain.View, 0, len(stores))
	for _, store := range stores {
		views = append(views, store.ToView())
	}
	return domain.ListResponse{
		Stores:   views,
		PageInfo: pagination.BuildPageInfo(req.Pagination, total),
	}, nil
}
