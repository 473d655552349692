package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTier_Thresholds(t *testing.T) {
	cases := []struct {
		name     string
		reviews  int
		helpfuls int
		want     Tier
	}{
		{"zero activity", 0, 0, TierRookie},
		{"just below regular", 4, 100, TierRookie},
		{"regular boundary", 5, 0, TierRegular},
		{"below trusted helpfuls", 30, 99, TierRegular},
		{"trusted boundary", 30, 100, TierTrusted},
		{"reviews alone not enough", 100, 499, TierTrusted},
		{"expert boundary", 100, 500, TierExpert},
		{"well past expert", 1000, 5000, TierExpert},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculateTier(tc.reviews, tc.helpfuls))
		})
	}
}

func TestCalculateTier_Monotonic(t *testing.T) {
	// More activity never lowers the tier.
	order := map[Tier]int{TierRookie: 0, TierRegular: 1, TierTrusted: 2, TierExpert: 3}
	prev := TierRookie
	for reviews := 0; reviews <= 120; reviews += 5 {
		got := CalculateTier(reviews, reviews*5)
		assert.GreaterOrEqual(t, order[got], order[prev],
			"tier dropped at reviews=%d", reviews)
		prev = got
	}
}

func TestRecordReview_SkipsManualTiers(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	restricted := &Reviewer{Tier: TierRestricted, ReviewCount: 200, HelpfulCount: 1000}
	restricted.RecordReview(now)
	assert.Equal(t, TierRestricted, restricted.Tier)

	elite := &Reviewer{Tier: TierElite}
	elite.AddHelpful()
	assert.Equal(t, TierElite, elite.Tier)
}

func TestRecordReview_PromotesAtBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	r := &Reviewer{Tier: TierRookie, ReviewCount: 4}

	r.RecordReview(now)

	assert.Equal(t, TierRegular, r.Tier)
	assert.Equal(t, 5, r.ReviewCount)
	assert.NotNil(t, r.LastReviewAt)
}

func TestRemoveHelpful_CanDemote(t *testing.T) {
	r := &Reviewer{Tier: TierTrusted, ReviewCount: 30, HelpfulCount: 100}
	r.RemoveHelpful()
	assert.Equal(t, TierRegular, r.Tier)
	assert.Equal(t, 99, r.HelpfulCount)

	// Never below zero.
	empty := &Reviewer{HelpfulCount: 0}
	empty.RemoveHelpful()
	assert.Equal(t, 0, empty.HelpfulCount)
}

func TestTierWeight(t *testing.T) {
	assert.Equal(t, 0.5, TierRookie.Weight())
	assert.Equal(t, 1.0, TierRegular.Weight())
	assert.Equal(t, 1.5, TierTrusted.Weight())
	assert.Equal(t, 2.0, TierExpert.Weight())
	assert.Equal(t, 2.0, TierElite.Weight())
	assert.Equal(t, 0.0, TierRestricted.Weight())
}

func TestTierStepDown(t *testing.T) {
	assert.Equal(t, TierTrusted, TierExpert.StepDown())
	assert.Equal(t, TierRegular, TierTrusted.StepDown())
	assert.Equal(t, TierRookie, TierRegular.StepDown())
	assert.Equal(t, TierRookie, TierRookie.StepDown())
	assert.Equal(t, TierRestricted, TierRestricted.StepDown())
	assert.Equal(t, TierElite, TierElite.StepDown())
}

func TestActive_WindowIsOneYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	fresh := now.AddDate(0, -11, 0)
	r := &Reviewer{LastReviewAt: &fresh}
	assert.True(t, r.Active(now))

	stale := now.AddDate(-1, 0, -1)
	r.LastReviewAt = &stale
	assert.False(t, r.Active(now))

	assert.False(t, (&Reviewer{}).Active(now))
}

func TestForceTier_ReturnsPrevious(t *testing.T) {
	r := &Reviewer{Tier: TierTrusted}
	old := r.ForceTier(TierRestricted)
	assert.Equal(t, TierTrusted, old)
	assert.Equal(t, TierRestricted, r.Tier)
}
