package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeComposite(t *testing.T) {
	cases := []struct {
		name                            string
		taste, value, ambiance, service float64
		want                            float64
	}{
		{"all max", 5, 5, 5, 5, 5.00},
		{"all min", 0, 0, 0, 0, 0.00},
		{"mixed", 4, 3, 3, 3, 3.40},
		{"half steps", 4.5, 3.5, 2.5, 2.5, 3.60},
		{"taste dominates", 5, 0, 0, 0, 2.00},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeComposite(tc.taste, tc.value, tc.ambiance, tc.service)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 3.34, Round2(3.344), 1e-9)
	assert.InDelta(t, 3.35, Round2(3.346), 1e-9)
	assert.InDelta(t, 0.67, Round2(2.0/3.0), 1e-9)
	assert.InDelta(t, 0.00, Round2(0.004), 1e-9)
	// 2.125 is exact in binary, so this pins the half-up behavior.
	assert.InDelta(t, 2.13, Round2(2.125), 1e-9)
}

func TestStatusTransitions(t *testing.T) {
	t.Run("pending can approve or reject", func(t *testing.T) {
		r := &Review{Status: StatusPending}
		assert.True(t, r.Approve("ok"))
		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, "ok", r.AdminComment)

		r = &Review{Status: StatusPending}
		assert.True(t, r.Reject("spam"))
		assert.Equal(t, StatusRejected, r.Status)
	})

	t.Run("approved can hold or publish", func(t *testing.T) {
		r := &Review{Status: StatusApproved}
		assert.True(t, r.HoldForBlind())
		assert.Equal(t, StatusBlindHeld, r.Status)

		r = &Review{Status: StatusApproved}
		assert.True(t, r.Publish())
		assert.Equal(t, StatusPublic, r.Status)
	})

	t.Run("blind held can publish", func(t *testing.T) {
		r := &Review{Status: StatusBlindHeld}
		assert.True(t, r.Publish())
		assert.Equal(t, StatusPublic, r.Status)
	})

	t.Run("only public can suspend", func(t *testing.T) {
		r := &Review{Status: StatusPublic}
		assert.True(t, r.Suspend("restricted"))
		assert.Equal(t, StatusSuspended, r.Status)

		for _, status := range []Status{StatusPending, StatusApproved, StatusBlindHeld, StatusRejected} {
			r := &Review{Status: status}
			assert.False(t, r.Suspend("restricted"), "suspend from %s", status)
			assert.Equal(t, status, r.Status)
		}
	})

	t.Run("terminal states reject transitions", func(t *testing.T) {
		rejected := &Review{Status: StatusRejected}
		assert.False(t, rejected.Approve(""))
		assert.False(t, rejected.Publish())

		suspended := &Review{Status: StatusSuspended}
		assert.False(t, suspended.Publish())
		assert.False(t, suspended.Approve(""))
	})

	t.Run("public cannot re-approve", func(t *testing.T) {
		r := &Review{Status: StatusPublic}
		assert.False(t, r.Approve(""))
		assert.False(t, r.Publish())
	})
}

func TestEditable(t *testing.T) {
	assert.True(t, (&Review{Status: StatusPending}).Editable())
	assert.True(t, (&Review{Status: StatusApproved}).Editable())
	assert.True(t, (&Review{Status: StatusBlindHeld}).Editable())
	assert.True(t, (&Review{Status: StatusPublic}).Editable())
	assert.False(t, (&Review{Status: StatusRejected}).Editable())
	assert.False(t, (&Review{Status: StatusSuspended}).Editable())
}

func TestToView_MasksScoresWhileBlind(t *testing.T) {
	r := Review{ScoreTaste: 4, ScoreValue: 3, ScoreAmbiance: 3, ScoreService: 3, ScoreComposite: 3.40}

	masked := r.ToView(true)
	assert.Nil(t, masked.ScoreComposite)
	assert.Nil(t, masked.ScoreTaste)

	open := r.ToView(false)
	if assert.NotNil(t, open.ScoreComposite) {
		assert.InDelta(t, 3.40, *open.ScoreComposite, 1e-9)
	}
}
