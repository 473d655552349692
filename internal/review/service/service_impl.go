package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/internal/authctx"
	"github.com/platewise/platewise/internal/clock"
	policydomain "github.com/platewise/platewise/internal/policy/domain"
	"github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	scoringdomain "github.com/platewise/platewise/internal/scoring/domain"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	pkgdb "github.com/platewise/platewise/pkg/db"
	"github.com/platewise/platewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	HelpfulRepo  domain.HelpfulRepository
	StoreRepo    storedomain.Repository
	ReviewerRepo reviewerdomain.Repository
	PolicySvc    policydomain.Service
	ScoringSvc   scoringdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	helpfulRepo  domain.HelpfulRepository
	storeRepo    storedomain.Repository
	reviewerRepo reviewerdomain.Repository
	policySvc    policydomain.Service
	scoringSvc   scoringdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("review.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		helpfulRepo:  p.HelpfulRepo,
		storeRepo:    p.StoreRepo,
		reviewerRepo: p.ReviewerRepo,
		policySvc:    p.PolicySvc,
		scoringSvc:   p.ScoringSvc,
	}
}

// validScore accepts 0.00 through 5.00 at two-decimal precision.
func validScore(v float64) bool {
	if v < 0 || v > 5 {
		return false
	}
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

func validateScores(scores ...float64) error {
	for _, score := range scores {
		if !validScore(score) {
			return domain.ErrInvalidScore
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Review, error) {
	reviewerID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || reviewerID == 0 {
		return domain.Review{}, domain.ErrUnauthenticated
	}
	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return domain.Review{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(req.Content) == "" {
		return domain.Review{}, domain.ErrInvalidContent
	}
	if err := validateScores(req.ScoreTaste, req.ScoreValue, req.ScoreAmbiance, req.ScoreService); err != nil {
		return domain.Review{}, err
	}

	now := s.clock.Now().UTC()
	partySize := req.PartySize
	if partySize < 1 {
		partySize = 1
	}
	review := domain.Review{
		ID:         s.genID.Generate(),
		StoreID:    storeID,
		ReviewerID: reviewerID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		PartySize:  partySize,
		Status:     domain.StatusPending,
		VisitDate:  req.VisitDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	review.SetScores(req.ScoreTaste, req.ScoreValue, req.ScoreAmbiance, req.ScoreService)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		reviewer, err := s.reviewerRepo.FindByID(ctx, tx, reviewerID)
		if err != nil {
			return err
		}
		if reviewer == nil {
			return domain.ErrUnauthenticated
		}
		if !reviewer.PhoneVerified {
			return domain.ErrPhoneVerificationRequired
		}
		if store, err := s.storeRepo.FindByID(ctx, tx, storeID); err != nil {
			return err
		} else if store == nil {
			return domain.ErrStoreNotFound
		}

		if err := s.repo.Insert(ctx, tx, &review); err != nil {
			return err
		}
		if err := s.storeRepo.IncrementReviewCount(ctx, tx, storeID); err != nil {
			return err
		}

		oldTier := reviewer.Tier
		reviewer.RecordReview(now)
		reviewer.UpdatedAt = now
		if err := s.reviewerRepo.Save(ctx, tx, reviewer); err != nil {
			return err
		}
		if reviewer.Tier != oldTier {
			return s.policySvc.HandleTierChanged(ctx, tx, reviewer.ID, oldTier, reviewer.Tier)
		}
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.Info("review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("store_id", storeID.String()),
	)
	return review, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Review, error) {
	reviewerID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || reviewerID == 0 {
		return domain.Review{}, domain.ErrUnauthenticated
	}
	reviewID, err := snowflake.ParseString(strings.TrimSpace(req.ReviewID))
	if err != nil || reviewID == 0 {
		return domain.Review{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(req.Content) == "" {
		return domain.Review{}, domain.ErrInvalidContent
	}
	if err := validateScores(req.ScoreTaste, req.ScoreValue, req.ScoreAmbiance, req.ScoreService); err != nil {
		return domain.Review{}, err
	}

	var updated domain.Review
	err = s.db.Transaction(func(tx *gorm.DB) error {
		review, err := s.repo.FindByID(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrNotFound
		}
		if err := s.requireOwnerOrAdmin(ctx, tx, review, reviewerID); err != nil {
			return err
		}
		if !review.Editable() {
			return domain.ErrNotEditable
		}

		review.Title = strings.TrimSpace(req.Title)
		review.Content = req.Content
		if req.PartySize >= 1 {
			review.PartySize = req.PartySize
		}
		review.SetScores(req.ScoreTaste, req.ScoreValue, req.ScoreAmbiance, req.ScoreService)
		review.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, review); err != nil {
			return err
		}
		// Edits to an already published review move the store's score
		// immediately.
		if review.Status == domain.StatusPublic {
			if err := s.scoringSvc.RecalculateStore(ctx, tx, review.StoreID); err != nil {
				return err
			}
		}
		updated = *review
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, reviewID string) error {
	reviewerID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || reviewerID == 0 {
		return domain.ErrUnauthenticated
	}
	id, err := snowflake.ParseString(strings.TrimSpace(reviewID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		review, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrNotFound
		}
		if err := s.requireOwnerOrAdmin(ctx, tx, review, reviewerID); err != nil {
			return err
		}

		wasPublic := review.Status == domain.StatusPublic
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if err := s.storeRepo.DecrementReviewCount(ctx, tx, review.StoreID); err != nil {
			return err
		}
		if wasPublic {
			return s.scoringSvc.RecalculateStore(ctx, tx, review.StoreID)
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, reviewID string) (domain.View, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(reviewID))
	if err != nil || id == 0 {
		return domain.View{}, domain.ErrInvalidID
	}

	review, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.View{}, err
	}
	if review == nil {
		return domain.View{}, domain.ErrNotFound
	}

	store, err := s.storeRepo.FindByID(ctx, s.db, review.StoreID)
	if err != nil {
		return domain.View{}, err
	}
	blind := store == nil || store.Blind
	return review.ToView(blind), nil
}

func (s *Service) ListByStore(ctx context.Context, req domain.ListByStoreRequest) (domain.ListResponse, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidID
	}

	store, err := s.storeRepo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.ListResponse{}, err
	}
	if store == nil {
		return domain.ListResponse{}, domain.ErrStoreNotFound
	}

	reviews, total, err := s.repo.FindPageByStoreAndStatus(ctx, s.db, storeID, domain.StatusPublic, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}

	views := make([]domain.View, 0, len(reviews))
	for _, review := range reviews {
		views = append(views, review.ToView(store.Blind))
	}
	return domain.ListResponse{
		Reviews:  views,
		PageInfo: pagination.BuildPageInfo(req.Pagination, total),
	}, nil
}

func (s *Service) ListMine(ctx context.Context, req domain.ListMineRequest) ([]domain.Review, pagination.PageInfo, error) {
	reviewerID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || reviewerID == 0 {
		return nil, pagination.PageInfo{}, domain.ErrUnauthenticated
	}

	reviews, total, err := s.repo.FindPageByReviewer(ctx, s.db, reviewerID, req.Pagination)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return reviews, pagination.BuildPageInfo(req.Pagination, total), nil
}

func (s *Service) MarkHelpful(ctx context.Context, reviewID string) error {
	voterID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || voterID == 0 {
		return domain.ErrUnauthenticated
	}
	id, err := snowflake.ParseString(strings.TrimSpace(reviewID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		review, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if review == nil || review.Status != domain.StatusPublic {
			return domain.ErrNotFound
		}
		if review.ReviewerID == voterID {
			return domain.ErrSelfHelpful
		}
		if existing, err := s.helpfulRepo.Find(ctx, tx, id, voterID); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateHelpful
		}

		helpful := domain.Helpful{
			ID:         s.genID.Generate(),
			ReviewID:   id,
			ReviewerID: voterID,
			CreatedAt:  s.clock.Now().UTC(),
		}
		if err := s.helpfulRepo.Insert(ctx, tx, &helpful); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateHelpful
			}
			return err
		}

		review.HelpfulCount++
		if err := s.repo.Save(ctx, tx, review); err != nil {
			return err
		}
		return s.adjustAuthorHelpful(ctx, tx, review.ReviewerID, +1)
	})
}

func (s *Service) UnmarkHelpful(ctx context.Context, reviewID string) error {
	voterID, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || voterID == 0 {
		return domain.ErrUnauthenticated
	}
	id, err := snowflake.ParseString(strings.TrimSpace(reviewID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		review, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrNotFound
		}
		helpful, err := s.helpfulRepo.Find(ctx, tx, id, voterID)
		if err != nil {
			return err
		}
		if helpful == nil {
			return domain.ErrHelpfulNotFound
		}
		if err := s.helpfulRepo.Delete(ctx, tx, helpful.ID); err != nil {
			return err
		}

		if review.HelpfulCount > 0 {
			review.HelpfulCount--
		}
		if err := s.repo.Save(ctx, tx, review); err != nil {
			return err
		}
		return s.adjustAuthorHelpful(ctx, tx, review.ReviewerID, -1)
	})
}

// adjustAuthorHelpful moves the author's helpful counter and pushes
// any resulting tier change through the policy hook.
func (s *Service) adjustAuthorHelpful(ctx context.Context, tx *gorm.DB, authorID snowflake.ID, delta int) error {
	author, err := s.reviewerRepo.FindByID(ctx, tx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		return nil
	}

	oldTier := author.Tier
	if delta > 0 {
		author.AddHelpful()
	} else {
		author.RemoveHelpful()
	}
	author.UpdatedAt = s.clock.Now().UTC()
	if err := s.reviewerRepo.Save(ctx, tx, author); err != nil {
		return err
	}
	if author.Tier != oldTier {
		return s.policySvc.HandleTierChanged(ctx, tx, author.ID, oldTier, author.Tier)
	}
	return nil
}

func (s *Service) ListPending(ctx context.Context, req domain.ListPendingRequest) ([]domain.Review, pagination.PageInfo, error) {
	if err := s.requireAdmin(ctx, s.db); err != nil {
		return nil, pagination.PageInfo{}, err
	}
	reviews, total, err := s.repo.FindPageByStatus(ctx, s.db, domain.StatusPending, req.Pagination)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}
	return reviews, pagination.BuildPageInfo(req.Pagination, total), nil
}

func (s *Service) Approve(ctx context.Context, req domain.ModerateRequest) (domain.Review, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ReviewID))
	if err != nil || id == 0 {
		return domain.Review{}, domain.ErrInvalidID
	}

	var approved domain.Review
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireAdmin(ctx, tx); err != nil {
			return err
		}
		review, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrNotFound
		}
		if !review.Approve(req.Comment) {
			return domain.ErrNotPending
		}
		review.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, review); err != nil {
			return err
		}
		if err := s.policySvc.ReevaluateStoreThreshold(ctx, tx, review.StoreID); err != nil {
			return err
		}
		// Re-read: the threshold pass may have held or published it.
		refreshed, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		approved = *refreshed
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}

	s.log.Info("review approved",
		zap.String("review_id", approved.ID.String()),
		zap.String("status", string(approved.Status)),
	)
	return approved, nil
}

func (s *Service) Reject(ctx context.Context, req domain.ModerateRequest) (domain.Review, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ReviewID))
	if err != nil || id == 0 {
		return domain.Review{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(req.Comment) == "" {
		return domain.Review{}, domain.ErrCommentRequired
	}

	var rejected domain.Review
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireAdmin(ctx, tx); err != nil {
			return err
		}
		review, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if review == nil {
			return domain.ErrNotFound
		}
		if !review.Reject(req.Comment) {
			return domain.ErrNotPending
		}
		review.UpdatedAt = s.clock.Now().UTC()
		if err := s.repo.Save(ctx, tx, review); err != nil {
			return err
		}
		rejected = *review
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}
	return rejected, nil
}

// requireOwnerOrAdmin lets the author or an administrator through; any
// other reviewer is refused.
func (s *Service) requireOwnerOrAdmin(ctx context.Context, db *gorm.DB, review *domain.Review, actorID snowflake.ID) error {
	if review.ReviewerID == actorID {
		return nil
	}
	actor, err := s.reviewerRepo.FindByID(ctx, db, actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.Role != reviewerdomain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, db *gorm.DB) error {
	id, ok := authctx.ReviewerIDFromContext(ctx)
	if !ok || id == 0 {
		return domain.ErrUnauthenticated
	}
	reviewer, err := s.reviewerRepo.FindByID(ctx, db, id)
	if err != nil {
		return err
	}
	if reviewer == nil {
		return domain.ErrUnauthenticated
	}
	if reviewer.Role != reviewerdomain.RoleAdmin {
		return domain.ErrAdminRequired
	}
	return nil
}
