package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/reviewer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reviewer *domain.Reviewer) error {
	return db.WithContext(ctx).Create(reviewer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM reviewers WHERE id = ?`,
		id,
	).Scan(&reviewer).Error
	if err != nil {
		return nil, err
	}
	if reviewer.ID == 0 {
		return nil, nil
	}
	return &reviewer, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM reviewers WHERE email = ?`,
		email,
	).Scan(&reviewer).Error
	if err != nil {
		return nil, err
	}
	if reviewer.ID == 0 {
		return nil, nil
	}
	return &reviewer, nil
}

func (r *repo) ExistsByEmail(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Reviewer{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) ExistsByNickname(ctx context.Context, db *gorm.DB, nickname string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Reviewer{}).
		Where("nickname = ?", nickname).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, reviewer *domain.Reviewer) error {
	return db.WithContext(ctx).Save(reviewer).Error
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]*domain.Reviewer, error) {
	var reviewers []*domain.Reviewer
	err := db.WithContext(ctx).
		Model(&domain.Reviewer{}).
		Order("id asc").
		Find(&reviewers).Error
	if err != nil {
		return nil, err
	}
	return reviewers, nil
}

func (r *repo) InsertFollow(ctx context.Context, db *gorm.DB, follow *domain.Follow) error {
	return db.WithContext(ctx).Create(follow).Error
}

func (r *repo) FindFollow(ctx context.Context, db *gorm.DB, followerID, followingID snowflake.ID) (*domain.Follow, error) {
	var follow domain.Follow
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID,
		followingID,
	).Scan(&follow).Error
	if err != nil {
		return nil, err
	}
	if follow.ID == 0 {
		return nil, nil
	}
	return &follow, nil
}

func (r *repo) DeleteFollow(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM follows WHERE id = ?`,
		id,
	).Error
}
