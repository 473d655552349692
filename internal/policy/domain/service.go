package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	"gorm.io/gorm"
)

// Policy constants that govern when reviews surface and how extreme
// scoring is dampened.
const (
	// BlindReviewThreshold is how many approved-or-later reviews a
	// store needs before anything goes public.
	BlindReviewThreshold = 5

	// CooldownDuration holds perfect 1.00 and 5.00 composites from
	// low-tier authors before they are eligible to publish.
	CooldownDuration = 12 * time.Hour

	// DeviationSampleSize is how many recent public reviews feed a
	// reviewer's deviation check, and DeviationExtremeRatio the
	// fraction of extremes that triggers dampening.
	DeviationSampleSize   = 20
	DeviationExtremeRatio = 0.90
)

// Service owns the policy jobs the scheduler drives plus the two
// synchronous hooks other services call inside their transactions.
type Service interface {
	// ProcessCooldownExpirations publishes cooldown-held reviews whose
	// hold has elapsed, re-evaluating each store's blind threshold.
	// Returns how many reviews were released.
	ProcessCooldownExpirations(ctx context.Context) (int, error)

	// RefreshDeviationTargets recomputes every reviewer's extreme
	// scoring flag from their recent public reviews.
	RefreshDeviationTargets(ctx context.Context) (int, error)

	// RecalculateStoresForTimeDecay re-runs scoring for every store
	// with public reviews so decay buckets shift as reviews age.
	RecalculateStoresForTimeDecay(ctx context.Context) (int, error)

	// RunTierEvaluation demotes trusted reviewers who have gone
	// inactive for over a year.
	RunTierEvaluation(ctx context.Context) (int, error)

	// ReevaluateStoreThreshold applies the blind threshold inside the
	// caller's transaction: below threshold approved reviews are held,
	// at threshold everything held is published and scores recomputed.
	ReevaluateStoreThreshold(ctx context.Context, tx *gorm.DB, storeID snowflake.ID) error

	// HandleTierChanged reacts to a reviewer tier change inside the
	// caller's transaction. A move to RESTRICTED suspends the
	// reviewer's public reviews and recalculates the affected stores.
	HandleTierChanged(ctx context.Context, tx *gorm.DB, reviewerID snowflake.ID, oldTier, newTier reviewerdomain.Tier) error
}
