package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/policy/domain"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	scoringdomain "github.com/platewise/platewise/internal/scoring/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cooldownApproveComment = "auto-approved after cooldown"
	restrictionComment     = "suspended due to account restriction"
)

var extremeComposites = []float64{1.00, 5.00}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	ReviewRepo   reviewdomain.Repository
	VisitRepo    reviewdomain.VisitRepository
	ReviewerRepo reviewerdomain.Repository
	ScoringSvc   scoringdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	reviewRepo   reviewdomain.Repository
	visitRepo    reviewdomain.VisitRepository
	reviewerRepo reviewerdomain.Repository
	scoringSvc   scoringdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("policy.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		reviewRepo:   p.ReviewRepo,
		visitRepo:    p.VisitRepo,
		reviewerRepo: p.ReviewerRepo,
		scoringSvc:   p.ScoringSvc,
	}
}

// cooldownEligible reports whether a pending review is an
// extreme-score submission from a low-trust author, the combination
// that must wait out the cooldown before auto-approval.
func cooldownEligible(review *reviewdomain.Review, author *reviewerdomain.Reviewer) bool {
	if author == nil {
		return false
	}
	if author.Tier != reviewerdomain.TierRookie && author.Tier != reviewerdomain.TierRegular {
		return false
	}
	return review.ScoreComposite == 1.00 || review.ScoreComposite == 5.00
}

func (s *Service) ProcessCooldownExpirations(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().UTC().Add(-domain.CooldownDuration)
	candidates, err := s.reviewRepo.FindByStatusCompositeCreatedBefore(
		ctx, s.db, reviewdomain.StatusPending, extremeComposites, cutoff)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range candidates {
		id := candidates[i].ID
		err := s.db.Transaction(func(tx *gorm.DB) error {
			review, err := s.reviewRepo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if review == nil || review.Status != reviewdomain.StatusPending {
				return nil
			}
			author, err := s.reviewerRepo.FindByID(ctx, tx, review.ReviewerID)
			if err != nil {
				return err
			}
			if !cooldownEligible(review, author) {
				return nil
			}

			if !review.Approve(cooldownApproveComment) {
				return nil
			}
			review.UpdatedAt = s.clock.Now().UTC()
			if err := s.reviewRepo.Save(ctx, tx, review); err != nil {
				return err
			}
			released++
			return s.ReevaluateStoreThreshold(ctx, tx, review.StoreID)
		})
		if err != nil {
			// A failed item rolls back alone; the next sweep retries it.
			s.log.Error("cooldown release failed",
				zap.String("review_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return released, nil
}

func (s *Service) RefreshDeviationTargets(ctx context.Context) (int, error) {
	reviewers, err := s.reviewerRepo.FindAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, reviewer := range reviewers {
		id := reviewer.ID
		err := s.db.Transaction(func(tx *gorm.DB) error {
			flagged, err := s.detectDeviation(ctx, tx, id)
			if err != nil {
				return err
			}

			current, err := s.reviewerRepo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if current == nil || current.DeviationTarget == flagged {
				return nil
			}

			current.DeviationTarget = flagged
			current.UpdatedAt = s.clock.Now().UTC()
			if err := s.reviewerRepo.Save(ctx, tx, current); err != nil {
				return err
			}
			changed++
			return s.recalculateReviewerStores(ctx, tx, id)
		})
		if err != nil {
			s.log.Error("deviation refresh failed",
				zap.String("reviewer_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return changed, nil
}

// detectDeviation looks at the reviewer's most recent public reviews.
// The flag requires a full sample window; anything shorter clears it.
func (s *Service) detectDeviation(ctx context.Context, tx *gorm.DB, reviewerID snowflake.ID) (bool, error) {
	recent, err := s.reviewRepo.FindRecentByReviewerAndStatus(
		ctx, tx, reviewerID, reviewdomain.StatusPublic, domain.DeviationSampleSize)
	if err != nil {
		return false, err
	}
	if len(recent) < domain.DeviationSampleSize {
		return false, nil
	}

	extreme := 0
	for i := range recent {
		if recent[i].ScoreComposite == 1.00 || recent[i].ScoreComposite == 5.00 {
			extreme++
		}
	}
	ratio := float64(extreme) / float64(len(recent))
	return ratio >= domain.DeviationExtremeRatio, nil
}

func (s *Service) RecalculateStoresForTimeDecay(ctx context.Context) (int, error) {
	storeIDs, err := s.reviewRepo.DistinctStoreIDsByStatus(ctx, s.db, reviewdomain.StatusPublic)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, storeID := range storeIDs {
		id := storeID
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return s.scoringSvc.RecalculateStore(ctx, tx, id)
		})
		if err != nil {
			s.log.Error("decay recalculation failed",
				zap.String("store_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *Service) RunTierEvaluation(ctx context.Context) (int, error) {
	reviewers, err := s.reviewerRepo.FindAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now().UTC()
	demoted := 0
	for _, reviewer := range reviewers {
		if reviewer.Tier.Manual() || reviewer.Tier == reviewerdomain.TierRookie {
			continue
		}
		if reviewer.Active(now) {
			continue
		}

		id := reviewer.ID
		err := s.db.Transaction(func(tx *gorm.DB) error {
			current, err := s.reviewerRepo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if current == nil || current.Tier.Manual() || current.Active(now) {
				return nil
			}
			newTier := current.Tier.StepDown()
			if newTier == current.Tier {
				return nil
			}

			oldTier := current.ForceTier(newTier)
			current.UpdatedAt = now
			if err := s.reviewerRepo.Save(ctx, tx, current); err != nil {
				return err
			}
			demoted++
			return s.HandleTierChanged(ctx, tx, id, oldTier, newTier)
		})
		if err != nil {
			s.log.Error("tier evaluation failed",
				zap.String("reviewer_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return demoted, nil
}

func (s *Service) ReevaluateStoreThreshold(ctx context.Context, tx *gorm.DB, storeID snowflake.ID) error {
	visible, err := s.reviewRepo.CountByStoreAndStatusIn(ctx, tx, storeID, reviewdomain.VisibleStatuses)
	if err != nil {
		return err
	}

	if visible < domain.BlindReviewThreshold {
		// Under threshold nothing surfaces; approved reviews wait in the
		// blind hold.
		approved, err := s.reviewRepo.FindByStoreAndStatusIn(
			ctx, tx, storeID, []reviewdomain.Status{reviewdomain.StatusApproved})
		if err != nil {
			return err
		}
		for i := range approved {
			review := &approved[i]
			if !review.HoldForBlind() {
				continue
			}
			review.UpdatedAt = s.clock.Now().UTC()
			if err := s.reviewRepo.Save(ctx, tx, review); err != nil {
				return err
			}
		}
		return nil
	}

	waiting, err := s.reviewRepo.FindByStoreAndStatusIn(ctx, tx, storeID,
		[]reviewdomain.Status{reviewdomain.StatusApproved, reviewdomain.StatusBlindHeld})
	if err != nil {
		return err
	}
	for i := range waiting {
		review := &waiting[i]
		if !review.Publish() {
			continue
		}
		visitCount, err := s.stampVisit(ctx, tx, review.ReviewerID, review.StoreID)
		if err != nil {
			return err
		}
		review.VisitCount = visitCount
		review.UpdatedAt = s.clock.Now().UTC()
		if err := s.reviewRepo.Save(ctx, tx, review); err != nil {
			return err
		}
	}
	return s.scoringSvc.RecalculateStore(ctx, tx, storeID)
}

// stampVisit bumps the per-(reviewer, store) visit counter. It moves
// only here, on the PUBLIC transition.
func (s *Service) stampVisit(ctx context.Context, tx *gorm.DB, reviewerID, storeID snowflake.ID) (int64, error) {
	now := s.clock.Now().UTC()
	visit, err := s.visitRepo.Find(ctx, tx, reviewerID, storeID)
	if err != nil {
		return 0, err
	}
	if visit == nil {
		visit = &reviewdomain.StoreVisit{
			ID:         s.genID.Generate(),
			ReviewerID: reviewerID,
			StoreID:    storeID,
			VisitCount: 1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.visitRepo.Insert(ctx, tx, visit); err != nil {
			return 0, err
		}
		return visit.VisitCount, nil
	}

	visit.VisitCount++
	visit.UpdatedAt = now
	if err := s.visitRepo.Save(ctx, tx, visit); err != nil {
		return 0, err
	}
	return visit.VisitCount, nil
}

func (s *Service) HandleTierChanged(ctx context.Context, tx *gorm.DB, reviewerID snowflake.ID, oldTier, newTier reviewerdomain.Tier) error {
	if oldTier == newTier || oldTier == "" || newTier == "" {
		return nil
	}

	publics, err := s.reviewRepo.FindByReviewerAndStatus(ctx, tx, reviewerID, reviewdomain.StatusPublic)
	if err != nil {
		return err
	}

	// Collect the affected stores before any suspension so every store
	// the reviewer touched is recalculated, including the ones whose
	// reviews are about to disappear from the public set.
	storeIDs := make([]snowflake.ID, 0, len(publics))
	seen := make(map[snowflake.ID]struct{}, len(publics))
	for i := range publics {
		if _, ok := seen[publics[i].StoreID]; ok {
			continue
		}
		seen[publics[i].StoreID] = struct{}{}
		storeIDs = append(storeIDs, publics[i].StoreID)
	}

	if newTier == reviewerdomain.TierRestricted {
		now := s.clock.Now().UTC()
		for i := range publics {
			review := &publics[i]
			if !review.Suspend(restrictionComment) {
				continue
			}
			review.UpdatedAt = now
			if err := s.reviewRepo.Save(ctx, tx, review); err != nil {
				return err
			}
		}
		s.log.Info("reviewer reviews suspended",
			zap.String("reviewer_id", reviewerID.String()),
			zap.Int("suspended", len(publics)),
		)
	}

	if len(storeIDs) == 0 {
		return nil
	}
	return s.scoringSvc.RecalculateStores(ctx, tx, storeIDs)
}

// recalculateReviewerStores re-runs aggregation for every store the
// reviewer currently has a public review on.
func (s *Service) recalculateReviewerStores(ctx context.Context, tx *gorm.DB, reviewerID snowflake.ID) error {
	publics, err := s.reviewRepo.FindByReviewerAndStatus(ctx, tx, reviewerID, reviewdomain.StatusPublic)
	if err != nil {
		return err
	}
	storeIDs := make([]snowflake.ID, 0, len(publics))
	for i := range publics {
		storeIDs = append(storeIDs, publics[i].StoreID)
	}
	if len(storeIDs) == 0 {
		return nil
	}
	return s.scoringSvc.RecalculateStores(ctx, tx, storeIDs)
}
