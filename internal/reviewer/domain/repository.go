package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reviewer *Reviewer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reviewer, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Reviewer, error)
	ExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error)
	ExistsByNickname(ctx context.Context, db *gorm.DB, nickname string) (bool, error)
	Save(ctx context.Context, db *gorm.DB, reviewer *Reviewer) error
	FindAll(ctx context.Context, db *gorm.DB) ([]*Reviewer, error)

	InsertFollow(ctx context.Context, db *gorm.DB, follow *Follow) error
	FindFollow(ctx context.Context, db *gorm.DB, followerID, followingID snowflake.ID) (*Follow, error)
	DeleteFollow(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
