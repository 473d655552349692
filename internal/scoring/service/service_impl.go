package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	policydomain "github.com/platewise/platewise/internal/policy/domain"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	"github.com/platewise/platewise/internal/scoring/domain"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	ReviewRepo   reviewdomain.Repository
	StoreRepo    storedomain.Repository
	ReviewerRepo reviewerdomain.Repository
}

type Service struct {
	log          *zap.Logger
	clock        clock.Clock
	reviewRepo   reviewdomain.Repository
	storeRepo    storedomain.Repository
	reviewerRepo reviewerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:          p.Log.Named("scoring.service"),
		clock:        p.Clock,
		reviewRepo:   p.ReviewRepo,
		storeRepo:    p.StoreRepo,
		reviewerRepo: p.ReviewerRepo,
	}
}

// decayWeight discounts a review by its age. Buckets match the aging
// policy: fresh reviews count in full, anything past three years
// barely registers.
func decayWeight(age time.Duration) float64 {
	const (
		sixMonths  = 182 * 24 * time.Hour
		oneYear    = 365 * 24 * time.Hour
		twoYears   = 2 * 365 * 24 * time.Hour
		threeYears = 3 * 365 * 24 * time.Hour
	)
	switch {
	case age < sixMonths:
		return 1.0
	case age < oneYear:
		return 0.8
	case age < twoYears:
		return 0.5
	case age < threeYears:
		return 0.2
	default:
		return 0.1
	}
}

// adjustForDeviation pulls an extreme reviewer's composite toward the
// baseline without ever crossing it, clamped to [1.0, 5.0].
func adjustForDeviation(composite float64) float64 {
	adjusted := composite
	switch {
	case composite > domain.BaselineScore:
		adjusted = composite - domain.DeviationPull
		if adjusted < domain.BaselineScore {
			adjusted = domain.BaselineScore
		}
	case composite < domain.BaselineScore:
		adjusted = composite + domain.DeviationPull
		if adjusted > domain.BaselineScore {
			adjusted = domain.BaselineScore
		}
	}
	if adjusted < 1.0 {
		return 1.0
	}
	if adjusted > 5.0 {
		return 5.0
	}
	return adjusted
}

func (s *Service) RecalculateStore(ctx context.Context, tx *gorm.DB, storeID snowflake.ID) error {
	store, err := s.storeRepo.FindByID(ctx, tx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return storedomain.ErrNotFound
	}
	return s.recalculate(ctx, tx, store)
}

func (s *Service) RecalculateStores(ctx context.Context, tx *gorm.DB, storeIDs []snowflake.ID) error {
	seen := make(map[snowflake.ID]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		store, err := s.storeRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if store == nil {
			s.log.Warn("skipping recalculation for missing store", zap.String("store_id", id.String()))
			continue
		}
		if err := s.recalculate(ctx, tx, store); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) recalculate(ctx context.Context, tx *gorm.DB, store *storedomain.Store) error {
	publics, err := s.reviewRepo.FindByStoreAndStatusIn(ctx, tx, store.ID, []reviewdomain.Status{reviewdomain.StatusPublic})
	if err != nil {
		return err
	}
	visibleCount, err := s.reviewRepo.CountByStoreAndStatusIn(ctx, tx, store.ID, reviewdomain.VisibleStatuses)
	if err != nil {
		return err
	}

	update := storedomain.ScoreUpdate{
		Blind: visibleCount < policydomain.BlindReviewThreshold,
	}
	if len(publics) == 0 {
		// The blend still applies: zero weight pulls the weighted score
		// all the way to the baseline, not to zero.
		update.ScoreWeighted = reviewdomain.Round2(domain.BaselineScore)
		return s.storeRepo.UpdateScores(ctx, tx, store.ID, update)
	}

	now := s.clock.Now().UTC()
	var sum, weightedSum, weightTotal float64
	for i := range publics {
		review := &publics[i]
		sum += review.ScoreComposite

		author, err := s.reviewerRepo.FindByID(ctx, tx, review.ReviewerID)
		if err != nil {
			return err
		}
		if author == nil {
			continue
		}

		composite := review.ScoreComposite
		if author.DeviationTarget {
			composite = adjustForDeviation(composite)
		}
		weight := author.Tier.Weight() * decayWeight(now.Sub(review.CreatedAt))
		weightedSum += composite * weight
		weightTotal += weight
	}

	raw := domain.BaselineScore
	if weightTotal > 0 {
		raw = weightedSum / weightTotal
	}
	blended := (raw*weightTotal + domain.BaselineScore*domain.PriorWeight) / (weightTotal + domain.PriorWeight)

	update.AvgRating = reviewdomain.Round2(sum / float64(len(publics)))
	update.ScoreWeighted = reviewdomain.Round2(blended)
	update.ReviewCountValid = int64(len(publics))
	return s.storeRepo.UpdateScores(ctx, tx, store.ID, update)
}
