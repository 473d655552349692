package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/review/domain"
	"github.com/platewise/platewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Review, error) {
	if id == 0 {
		return nil, nil
	}
	var review domain.Review
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reviews WHERE id = ?`, id).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Save(review).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM reviews WHERE id = ?`, id).Error
}

func (r *repo) FindByStoreAndStatusIn(ctx context.Context, db *gorm.DB, storeID snowflake.ID, statuses []domain.Status) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.WithContext(ctx).
		Where("store_id = ? AND status IN ?", storeID, statuses).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *repo) FindPageByStoreAndStatus(ctx context.Context, db *gorm.DB, storeID snowflake.ID, status domain.Status, page pagination.Pagination) ([]domain.Review, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Review{}).
		Where("store_id = ? AND status = ?", storeID, status)
	return r.paged(stmt, page)
}

func (r *repo) FindPageByReviewer(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, page pagination.Pagination) ([]domain.Review, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Review{}).
		Where("reviewer_id = ?", reviewerID)
	return r.paged(stmt, page)
}

func (r *repo) FindPageByStatus(ctx context.Context, db *gorm.DB, status domain.Status, page pagination.Pagination) ([]domain.Review, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Review{}).
		Where("status = ?", status)
	return r.paged(stmt, page)
}

func (r *repo) paged(stmt *gorm.DB, page pagination.Pagination) ([]domain.Review, int64, error) {
	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []domain.Review
	err := page.Apply(stmt.Session(&gorm.Session{})).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *repo) CountByStoreAndStatusIn(ctx context.Context, db *gorm.DB, storeID snowflake.ID, statuses []domain.Status) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Review{}).
		Where("store_id = ? AND status IN ?", storeID, statuses).
		Count(&count).Error
	return count, err
}

func (r *repo) FindByStatusCompositeCreatedBefore(ctx context.Context, db *gorm.DB, status domain.Status, composites []float64, before time.Time) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.WithContext(ctx).
		Where("status = ? AND score_composite IN ? AND created_at <= ?", status, composites, before).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *repo) FindRecentByReviewerAndStatus(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, status domain.Status, limit int) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.WithContext(ctx).
		Where("reviewer_id = ? AND status = ?", reviewerID, status).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *repo) FindByReviewerAndStatus(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, status domain.Status) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.WithContext(ctx).
		Where("reviewer_id = ? AND status = ?", reviewerID, status).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *repo) DistinctStoreIDsByStatus(ctx context.Context, db *gorm.DB, status domain.Status) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Raw(`SELECT DISTINCT store_id FROM reviews WHERE status = ?`, status).
		Scan(&ids).Error
	return ids, err
}

type helpfulRepo struct{}

func ProvideHelpful() domain.HelpfulRepository { return &helpfulRepo{} }

func (r *helpfulRepo) Insert(ctx context.Context, db *gorm.DB, helpful *domain.Helpful) error {
	return db.WithContext(ctx).Create(helpful).Error
}

func (r *helpfulRepo) Find(ctx context.Context, db *gorm.DB, reviewID, reviewerID snowflake.ID) (*domain.Helpful, error) {
	var helpful domain.Helpful
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM review_helpfuls WHERE review_id = ? AND reviewer_id = ?`, reviewID, reviewerID).
		First(&helpful).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &helpful, nil
}

func (r *helpfulRepo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM review_helpfuls WHERE id = ?`, id).Error
}

type visitRepo struct{}

func ProvideVisit() domain.VisitRepository { return &visitRepo{} }

func (r *visitRepo) Find(ctx context.Context, db *gorm.DB, reviewerID, storeID snowflake.ID) (*domain.StoreVisit, error) {
	var visit domain.StoreVisit
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reviewer_store_visits WHERE reviewer_id = ? AND store_id = ?`, reviewerID, storeID).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

func (r *visitRepo) Insert(ctx context.Context, db *gorm.DB, visit *domain.StoreVisit) error {
	return db.WithContext(ctx).Create(visit).Error
}

func (r *visitRepo) Save(ctx context.Context, db *gorm.DB, visit *domain.StoreVisit) error {
	return db.WithContext(ctx).Save(visit).Error
}
