package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/platewise/platewise/internal/clock"
	policydomain "github.com/platewise/platewise/internal/policy/domain"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewrepo "github.com/platewise/platewise/internal/review/repository"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	reviewerrepo "github.com/platewise/platewise/internal/reviewer/repository"
	scoringservice "github.com/platewise/platewise/internal/scoring/service"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	storerepo "github.com/platewise/platewise/internal/store/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq int

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   policydomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:policy%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&reviewerdomain.Reviewer{},
		&storedomain.Store{},
		&reviewdomain.Review{},
		&reviewdomain.StoreVisit{},
	))

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	scoringSvc := scoringservice.New(scoringservice.Params{
		Log:          log,
		Clock:        clk,
		ReviewRepo:   reviewrepo.Provide(),
		StoreRepo:    storerepo.Provide(),
		ReviewerRepo: reviewerrepo.Provide(),
	})
	svc := New(Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        clk,
		ReviewRepo:   reviewrepo.Provide(),
		VisitRepo:    reviewrepo.ProvideVisit(),
		ReviewerRepo: reviewerrepo.Provide(),
		ScoringSvc:   scoringSvc,
	})

	return &fixture{t: t, db: db, node: node, clock: clk, svc: svc}
}

func (f *fixture) reviewer(tier reviewerdomain.Tier) *reviewerdomain.Reviewer {
	id := f.node.Generate()
	r := &reviewerdomain.Reviewer{
		ID:            id,
		Email:         fmt.Sprintf("r%s@example.com", id),
		Nickname:      fmt.Sprintf("nick%s", id),
		Password:      "x",
		Role:          reviewerdomain.RoleUser,
		Tier:          tier,
		PhoneVerified: true,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	require.NoError(f.t, f.db.Create(r).Error)
	return r
}

func (f *fixture) store() *storedomain.Store {
	s := &storedomain.Store{ID: f.node.Generate(), Name: "store", Blind: true, CreatedAt: f.clock.Now(), UpdatedAt: f.clock.Now()}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

func (f *fixture) review(storeID, reviewerID snowflake.ID, status reviewdomain.Status, composite float64, createdAt time.Time) *reviewdomain.Review {
	r := &reviewdomain.Review{
		ID:             f.node.Generate(),
		StoreID:        storeID,
		ReviewerID:     reviewerID,
		Content:        "text",
		ScoreComposite: composite,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(f.t, f.db.Create(r).Error)
	return r
}

func (f *fixture) reloadReview(id snowflake.ID) reviewdomain.Review {
	var r reviewdomain.Review
	require.NoError(f.t, f.db.First(&r, "id = ?", id).Error)
	return r
}

func (f *fixture) reloadStore(id snowflake.ID) storedomain.Store {
	var s storedomain.Store
	require.NoError(f.t, f.db.First(&s, "id = ?", id).Error)
	return s
}

func (f *fixture) reloadReviewer(id snowflake.ID) reviewerdomain.Reviewer {
	var r reviewerdomain.Reviewer
	require.NoError(f.t, f.db.First(&r, "id = ?", id).Error)
	return r
}

func TestReevaluateStoreThreshold_UnderThresholdHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.store()
	author := f.reviewer(reviewerdomain.TierRegular)

	var ids []snowflake.ID
	for i := 0; i < 4; i++ {
		r := f.review(store.ID, author.ID, reviewdomain.StatusApproved, 4.00, f.clock.Now())
		ids = append(ids, r.ID)
	}

	require.NoError(t, f.svc.ReevaluateStoreThreshold(ctx, f.db, store.ID))

	for _, id := range ids {
		assert.Equal(t, reviewdomain.StatusBlindHeld, f.reloadReview(id).Status)
	}
	assert.True(t, f.reloadStore(store.ID).Blind)
}

func TestReevaluateStoreThreshold_FifthApprovalPublishesAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.store()

	var ids []snowflake.ID
	authors := make([]*reviewerdomain.Reviewer, 0, 5)
	for i := 0; i < 4; i++ {
		author := f.reviewer(reviewerdomain.TierRegular)
		authors = append(authors, author)
		r := f.review(store.ID, author.ID, reviewdomain.StatusBlindHeld, 4.00, f.clock.Now())
		ids = append(ids, r.ID)
	}
	fifth := f.reviewer(reviewerdomain.TierRegular)
	authors = append(authors, fifth)
	r5 := f.review(store.ID, fifth.ID, reviewdomain.StatusApproved, 4.00, f.clock.Now())
	ids = append(ids, r5.ID)

	require.NoError(t, f.svc.ReevaluateStoreThreshold(ctx, f.db, store.ID))

	for _, id := range ids {
		got := f.reloadReview(id)
		assert.Equal(t, reviewdomain.StatusPublic, got.Status)
		assert.Equal(t, int64(1), got.VisitCount)
	}
	got := f.reloadStore(store.ID)
	assert.False(t, got.Blind)
	assert.Equal(t, int64(5), got.ReviewCountValid)

	// A sixth approval publishes only the new review.
	sixth := f.review(store.ID, authors[0].ID, reviewdomain.StatusApproved, 4.00, f.clock.Now())
	require.NoError(t, f.svc.ReevaluateStoreThreshold(ctx, f.db, store.ID))

	got6 := f.reloadReview(sixth.ID)
	assert.Equal(t, reviewdomain.StatusPublic, got6.Status)
	// Second public review for the same (reviewer, store) pair.
	assert.Equal(t, int64(2), got6.VisitCount)
	assert.Equal(t, int64(6), f.reloadStore(store.ID).ReviewCountValid)
	// The first five keep their original visit counters.
	assert.Equal(t, int64(1), f.reloadReview(ids[0]).VisitCount)
}

func TestProcessCooldownExpirations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.store()

	// Four established public reviews, then an extreme pending one
	// from a rookie.
	for i := 0; i < 4; i++ {
		author := f.reviewer(reviewerdomain.TierRegular)
		f.review(store.ID, author.ID, reviewdomain.StatusPublic, 4.00, f.clock.Now().Add(-time.Hour))
	}
	rookie := f.reviewer(reviewerdomain.TierRookie)
	pending := f.review(store.ID, rookie.ID, reviewdomain.StatusPending, 1.00, f.clock.Now())

	// Eleven hours in, the hold is still active.
	f.clock.Advance(11 * time.Hour)
	released, err := f.svc.ProcessCooldownExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, released)
	assert.Equal(t, reviewdomain.StatusPending, f.reloadReview(pending.ID).Status)

	// At thirteen hours it is released and, with five counted
	// submissions, goes straight to PUBLIC.
	f.clock.Advance(2 * time.Hour)
	released, err = f.svc.ProcessCooldownExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got := f.reloadReview(pending.ID)
	assert.Equal(t, reviewdomain.StatusPublic, got.Status)
	assert.Equal(t, int64(1), got.VisitCount)
	assert.False(t, f.reloadStore(store.ID).Blind)

	// Nothing left to release.
	released, err = f.svc.ProcessCooldownExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestProcessCooldownExpirations_HighTierNotHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.store()
	expert := f.reviewer(reviewerdomain.TierExpert)
	pending := f.review(store.ID, expert.ID, reviewdomain.StatusPending, 5.00, f.clock.Now())

	f.clock.Advance(13 * time.Hour)
	released, err := f.svc.ProcessCooldownExpirations(ctx)
	require.NoError(t, err)

	// The sweep only auto-approves low-tier extremes; an expert's
	// review waits for moderation.
	assert.Equal(t, 0, released)
	assert.Equal(t, reviewdomain.StatusPending, f.reloadReview(pending.ID).Status)
}

func TestHandleTierChanged_RestrictionSuspendsAndRecalculates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.reviewer(reviewerdomain.TierTrusted)

	storeA := f.store()
	storeB := f.store()
	ra := f.review(storeA.ID, author.ID, reviewdomain.StatusPublic, 5.00, f.clock.Now())
	rb := f.review(storeB.ID, author.ID, reviewdomain.StatusPublic, 5.00, f.clock.Now())

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.HandleTierChanged(ctx, tx, author.ID, reviewerdomain.TierTrusted, reviewerdomain.TierRestricted)
	})
	require.NoError(t, err)

	assert.Equal(t, reviewdomain.StatusSuspended, f.reloadReview(ra.ID).Status)
	assert.Equal(t, reviewdomain.StatusSuspended, f.reloadReview(rb.ID).Status)

	// Both stores lost their only counted submission and settle back on
	// the baseline weighted score.
	for _, id := range []snowflake.ID{storeA.ID, storeB.ID} {
		got := f.reloadStore(id)
		assert.Equal(t, int64(0), got.ReviewCountValid)
		assert.True(t, got.Blind)
		assert.InDelta(t, 3.00, got.ScoreWeighted, 1e-9)
	}
}

func TestHandleTierChanged_NoopWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.reviewer(reviewerdomain.TierRegular)
	store := f.store()
	r := f.review(store.ID, author.ID, reviewdomain.StatusPublic, 4.00, f.clock.Now())

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.HandleTierChanged(ctx, tx, author.ID, reviewerdomain.TierRegular, reviewerdomain.TierRegular)
	})
	require.NoError(t, err)
	assert.Equal(t, reviewdomain.StatusPublic, f.reloadReview(r.ID).Status)
}

func TestRefreshDeviationTargets_RequiresFullWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.reviewer(reviewerdomain.TierRegular)
	store := f.store()

	// Nineteen extreme public reviews: not enough samples.
	for i := 0; i < 19; i++ {
		f.review(store.ID, author.ID, reviewdomain.StatusPublic, 5.00, f.clock.Now().Add(-time.Duration(i)*time.Hour))
	}

	changed, err := f.svc.RefreshDeviationTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	assert.False(t, f.reloadReviewer(author.ID).DeviationTarget)

	// The twentieth closes the window and trips the flag.
	f.review(store.ID, author.ID, reviewdomain.StatusPublic, 1.00, f.clock.Now())
	changed, err = f.svc.RefreshDeviationTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.True(t, f.reloadReviewer(author.ID).DeviationTarget)

	// Re-running with no change in the sample keeps the flag and
	// reports nothing new.
	changed, err = f.svc.RefreshDeviationTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestRefreshDeviationTargets_ClearsBelowRatio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.reviewer(reviewerdomain.TierRegular)
	author.DeviationTarget = true
	require.NoError(t, f.db.Save(author).Error)
	store := f.store()

	// 17 extremes out of 20 is under the 0.90 ratio.
	for i := 0; i < 17; i++ {
		f.review(store.ID, author.ID, reviewdomain.StatusPublic, 5.00, f.clock.Now().Add(-time.Duration(i)*time.Hour))
	}
	for i := 0; i < 3; i++ {
		f.review(store.ID, author.ID, reviewdomain.StatusPublic, 3.40, f.clock.Now().Add(-time.Duration(20+i)*time.Hour))
	}

	changed, err := f.svc.RefreshDeviationTargets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.False(t, f.reloadReviewer(author.ID).DeviationTarget)
}

func TestRunTierEvaluation_DemotesLapsedTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.Now()

	stale := now.AddDate(0, -13, 0)
	fresh := now.AddDate(0, -2, 0)

	lapsed := f.reviewer(reviewerdomain.TierTrusted)
	lapsed.LastReviewAt = &stale
	require.NoError(t, f.db.Save(lapsed).Error)

	active := f.reviewer(reviewerdomain.TierTrusted)
	active.LastReviewAt = &fresh
	require.NoError(t, f.db.Save(active).Error)

	elite := f.reviewer(reviewerdomain.TierElite)
	elite.LastReviewAt = &stale
	require.NoError(t, f.db.Save(elite).Error)

	rookie := f.reviewer(reviewerdomain.TierRookie)
	rookie.LastReviewAt = &stale
	require.NoError(t, f.db.Save(rookie).Error)

	demoted, err := f.svc.RunTierEvaluation(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, demoted)
	assert.Equal(t, reviewerdomain.TierRegular, f.reloadReviewer(lapsed.ID).Tier)
	assert.Equal(t, reviewerdomain.TierTrusted, f.reloadReviewer(active.ID).Tier)
	assert.Equal(t, reviewerdomain.TierElite, f.reloadReviewer(elite.ID).Tier)
	assert.Equal(t, reviewerdomain.TierRookie, f.reloadReviewer(rookie.ID).Tier)
}

func TestRecalculateStoresForTimeDecay_CountsStores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	storeA := f.store()
	storeB := f.store()
	storeC := f.store() // no public reviews
	author := f.reviewer(reviewerdomain.TierRegular)
	f.review(storeA.ID, author.ID, reviewdomain.StatusPublic, 4.00, f.clock.Now())
	f.review(storeB.ID, author.ID, reviewdomain.StatusPublic, 4.00, f.clock.Now())
	f.review(storeC.ID, author.ID, reviewdomain.StatusPending, 4.00, f.clock.Now())

	processed, err := f.svc.RecalculateStoresForTimeDecay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
}
