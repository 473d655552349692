package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/store/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, store *domain.Store) error {
	return db.WithContext(ctx).Create(store).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Store, error) {
	if id == 0 {
		return nil, nil
	}
	var store domain.Store
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM stores WHERE id = ?`, id).
		First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Store, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Store{})
	if req.CategoryID != "" {
		stmt = stmt.Where("category_id = ?", req.CategoryID)
	}
	if req.RegionID != "" {
		stmt = stmt.Where("region_id = ?", req.RegionID)
	}
	if req.Keyword != "" {
		stmt = stmt.Where("name LIKE ?", "%"+req.Keyword+"%")
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stores []domain.Store
	err := req.Apply(stmt.Session(&gorm.Session{})).
		Order("score_weighted DESC, id DESC").
		Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

func (r *repo) UpdateScores(ctx context.Context, db *gorm.DB, id snowflake.ID, update domain.ScoreUpdate) error {
	return db.WithContext(ctx).Exec(`
		UPDATE stores
		SET avg_rating = ?,
		    score_weighted = ?,
		    review_count_valid = ?,
		    blind = ?
		WHERE id = ?`,
		update.AvgRating,
		update.ScoreWeighted,
		update.ReviewCountValid,
		update.Blind,
		id,
	).Error
}

func (r *repo) IncrementReviewCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`
		UPDATE stores SET review_count = review_count + 1 WHERE id = ?`, id).Error
}

func (r *repo) DecrementReviewCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`
		UPDATE stores SET review_count = review_count - 1 WHERE id = ? AND review_count > 0`, id).Error
}
