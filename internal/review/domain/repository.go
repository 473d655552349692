package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Review, error)
	Save(ctx context.Context, db *gorm.DB, review *Review) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	FindByStoreAndStatusIn(ctx context.Context, db *gorm.DB, storeID snowflake.ID, statuses []Status) ([]Review, error)
	FindPageByStoreAndStatus(ctx context.Context, db *gorm.DB, storeID snowflake.ID, status Status, page pagination.Pagination) ([]Review, int64, error)
	FindPageByReviewer(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, page pagination.Pagination) ([]Review, int64, error)
	FindPageByStatus(ctx context.Context, db *gorm.DB, status Status, page pagination.Pagination) ([]Review, int64, error)
	CountByStoreAndStatusIn(ctx context.Context, db *gorm.DB, storeID snowflake.ID, statuses []Status) (int64, error)

	FindByStatusCompositeCreatedBefore(ctx context.Context, db *gorm.DB, status Status, composites []float64, before time.Time) ([]Review, error)
	FindRecentByReviewerAndStatus(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, status Status, limit int) ([]Review, error)
	FindByReviewerAndStatus(ctx context.Context, db *gorm.DB, reviewerID snowflake.ID, status Status) ([]Review, error)
	DistinctStoreIDsByStatus(ctx context.Context, db *gorm.DB, status Status) ([]snowflake.ID, error)
}

type HelpfulRepository interface {
	Insert(ctx context.Context, db *gorm.DB, helpful *Helpful) error
	Find(ctx context.Context, db *gorm.DB, reviewID, reviewerID snowflake.ID) (*Helpful, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type VisitRepository interface {
	Find(ctx context.Context, db *gorm.DB, reviewerID, storeID snowflake.ID) (*StoreVisit, error)
	Insert(ctx context.Context, db *gorm.DB, visit *StoreVisit) error
	Save(ctx context.Context, db *gorm.DB, visit *StoreVisit) error
}
