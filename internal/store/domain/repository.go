package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ScoreUpdate struct {
	AvgRating        float64
	ScoreWeighted    float64
	ReviewCountValid int64
	Blind            bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, store *Store) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Store, int64, error)
	UpdateScores(ctx context.Context, db *gorm.DB, id snowflake.ID, update ScoreUpdate) error
	IncrementReviewCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DecrementReviewCount(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
