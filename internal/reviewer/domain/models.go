package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the access role of a reviewer account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Tier is a reviewer's trust standing. ROOKIE..EXPERT are earned through
// activity; RESTRICTED and ELITE are assigned manually and are never touched
// by the automatic recompute rule.
type Tier string

const (
	TierRookie     Tier = "ROOKIE"
	TierRegular    Tier = "REGULAR"
	TierTrusted    Tier = "TRUSTED"
	TierExpert     Tier = "EXPERT"
	TierRestricted Tier = "RESTRICTED"
	TierElite      Tier = "ELITE"
)

// Tier promotion thresholds: (review count, helpful count), both must be met.
const (
	regularReviewThreshold  = 5
	regularHelpfulThreshold = 0
	trustedReviewThreshold  = 30
	trustedHelpfulThreshold = 100
	expertReviewThreshold   = 100
	expertHelpfulThreshold  = 500
)

// CalculateTier returns the highest earned tier whose thresholds are met.
func CalculateTier(reviewCount, helpfulCount int) Tier {
	switch {
	case reviewCount >= expertReviewThreshold && helpfulCount >= expertHelpfulThreshold:
		return TierExpert
	case reviewCount >= trustedReviewThreshold && helpfulCount >= trustedHelpfulThreshold:
		return TierTrusted
	case reviewCount >= regularReviewThreshold && helpfulCount >= regularHelpfulThreshold:
		return TierRegular
	default:
		return TierRookie
	}
}

// Manual reports whether the tier is assigned by an administrator only.
func (t Tier) Manual() bool {
	return t == TierRestricted || t == TierElite
}

// Weight is the aggregation weight a review earns from its author's tier.
func (t Tier) Weight() float64 {
	switch t {
	case TierRookie:
		return 0.5
	case TierRegular:
		return 1.0
	case TierTrusted:
		return 1.5
	case TierExpert, TierElite:
		return 2.0
	case TierRestricted:
		return 0.0
	default:
		return 0.5
	}
}

// StepDown returns the tier one rung below an earned tier. Rookie and
// the manual tiers have nowhere to fall.
func (t Tier) StepDown() Tier {
	switch t {
	case TierExpert:
		return TierTrusted
	case TierTrusted:
		return TierRegular
	case TierRegular:
		return TierRookie
	default:
		return t
	}
}

// Valid reports whether t is a known tier value.
func (t Tier) Valid() bool {
	switch t {
	case TierRookie, TierRegular, TierTrusted, TierExpert, TierRestricted, TierElite:
		return true
	default:
		return false
	}
}

// Reviewer is an account plus its trust state.
type Reviewer struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Email           string       `gorm:"not null;uniqueIndex;size:100" json:"email"`
	Nickname        string       `gorm:"not null;uniqueIndex;size:50" json:"nickname"`
	Password        string       `gorm:"not null;size:255" json:"-"`
	Role            Role         `gorm:"not null;size:20" json:"role"`
	Tier            Tier         `gorm:"not null;size:20;index" json:"tier"`
	ReviewCount     int          `gorm:"not null;default:0" json:"review_count"`
	HelpfulCount    int          `gorm:"not null;default:0" json:"helpful_count"`
	ViolationCount  int          `gorm:"not null;default:0" json:"violation_count"`
	LastReviewAt    *time.Time   `gorm:"index" json:"last_review_at,omitempty"`
	DeviationTarget bool         `gorm:"not null;default:false" json:"deviation_target"`
	PhoneVerified   bool         `gorm:"not null;default:false" json:"phone_verified"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

// RecordReview bumps the submission counter, stamps activity and re-derives
// the earned tier.
func (r *Reviewer) RecordReview(now time.Time) {
	r.ReviewCount++
	r.LastReviewAt = &now
	r.recalculateTier()
}

// AddHelpful bumps the cumulative endorsement counter and re-derives the tier.
func (r *Reviewer) AddHelpful() {
	r.HelpfulCount++
	r.recalculateTier()
}

// RemoveHelpful decrements the cumulative endorsement counter, never below zero.
func (r *Reviewer) RemoveHelpful() {
	if r.HelpfulCount > 0 {
		r.HelpfulCount--
		r.recalculateTier()
	}
}

// Manually assigned tiers are exempt from the automatic step function.
func (r *Reviewer) recalculateTier() {
	if r.Tier.Manual() {
		return
	}
	r.Tier = CalculateTier(r.ReviewCount, r.HelpfulCount)
}

// ForceTier sets the tier directly, bypassing the automatic rule, and
// returns the previous tier so callers can drive side effects.
func (r *Reviewer) ForceTier(newTier Tier) Tier {
	oldTier := r.Tier
	r.Tier = newTier
	return oldTier
}

// ForceRole sets the role directly and returns the previous role.
func (r *Reviewer) ForceRole(newRole Role) Role {
	oldRole := r.Role
	r.Role = newRole
	return oldRole
}

// Active reports whether the reviewer submitted within the last year.
// Earned tiers lapse when this turns false.
func (r *Reviewer) Active(now time.Time) bool {
	if r.LastReviewAt == nil {
		return false
	}
	return r.LastReviewAt.After(now.AddDate(-1, 0, 0))
}

// Follow is a directed follower relation between two reviewers.
type Follow struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	FollowerID  snowflake.ID `gorm:"not null;uniqueIndex:uk_reviewer_follow" json:"follower_id"`
	FollowingID snowflake.ID `gorm:"not null;uniqueIndex:uk_reviewer_follow;index" json:"following_id"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}
