package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Aggregation constants. Every store score is blended toward the
// platform baseline so thin stores cannot dominate rankings.
const (
	BaselineScore = 3.0
	PriorWeight   = 30.0

	// DeviationPull is how far an extreme reviewer's composite is
	// pulled back toward the baseline before weighting.
	DeviationPull = 0.5
)

// Service recomputes a store's published scores from its public
// reviews. Callers hand in their own transaction; recalculation is
// always part of whatever mutation triggered it.
type Service interface {
	RecalculateStore(ctx context.Context, tx *gorm.DB, storeID snowflake.ID) error
	RecalculateStores(ctx context.Context, tx *gorm.DB, storeIDs []snowflake.ID) error
}
