package domain

import (
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusBlindHeld Status = "BLIND_HELD"
	StatusPublic    Status = "PUBLIC"
	StatusSuspended Status = "SUSPENDED"
)

// VisibleStatuses are the statuses that count toward a store's blind
// threshold. Only PUBLIC reviews feed the published scores.
var VisibleStatuses = []Status{StatusApproved, StatusBlindHeld, StatusPublic}

// Composite weights over the four score axes.
const (
	weightTaste    = 0.40
	weightValue    = 0.30
	weightAmbiance = 0.15
	weightService  = 0.15
)

// Round2 rounds half-up to two decimals. Scores are stored and
// compared at this precision everywhere.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// ComputeComposite collapses the four axes into one score.
func ComputeComposite(taste, value, ambiance, service float64) float64 {
	return Round2(taste*weightTaste + value*weightValue + ambiance*weightAmbiance + service*weightService)
}

type Review struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id,string"`
	StoreID        snowflake.ID `gorm:"index;not null" json:"store_id,string"`
	ReviewerID     snowflake.ID `gorm:"index;not null" json:"reviewer_id,string"`
	Title          string       `gorm:"size:200" json:"title"`
	Content        string       `gorm:"size:4000" json:"content"`
	PartySize      int          `gorm:"not null;default:1" json:"party_size"`
	ScoreTaste     float64      `gorm:"not null" json:"score_taste"`
	ScoreValue     float64      `gorm:"not null" json:"score_value"`
	ScoreAmbiance  float64      `gorm:"not null" json:"score_ambiance"`
	ScoreService   float64      `gorm:"not null" json:"score_service"`
	ScoreComposite float64      `gorm:"not null;index" json:"score_composite"`
	Status         Status       `gorm:"size:20;not null;index" json:"status"`
	VisitDate      time.Time    `json:"visit_date"`
	VisitCount     int64        `gorm:"not null;default:0" json:"visit_count"`
	HelpfulCount   int64        `gorm:"not null;default:0" json:"helpful_count"`
	AdminComment   string       `gorm:"size:1000" json:"-"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) SetScores(taste, value, ambiance, service float64) {
	r.ScoreTaste = taste
	r.ScoreValue = value
	r.ScoreAmbiance = ambiance
	r.ScoreService = service
	r.ScoreComposite = ComputeComposite(taste, value, ambiance, service)
}

func (r *Review) CanTransitionTo(next Status) bool {
	switch next {
	case StatusApproved, StatusRejected:
		return r.Status == StatusPending
	case StatusBlindHeld:
		return r.Status == StatusApproved
	case StatusPublic:
		return r.Status == StatusApproved || r.Status == StatusBlindHeld
	case StatusSuspended:
		return r.Status == StatusPublic
	default:
		return false
	}
}

// Editable reports whether the author may still change content and
// scores. Rejected and suspended reviews are frozen.
func (r *Review) Editable() bool {
	return r.Status != StatusRejected && r.Status != StatusSuspended
}

func (r *Review) Approve(comment string) bool {
	if !r.CanTransitionTo(StatusApproved) {
		return false
	}
	r.Status = StatusApproved
	r.AdminComment = comment
	return true
}

func (r *Review) Reject(comment string) bool {
	if !r.CanTransitionTo(StatusRejected) {
		return false
	}
	r.Status = StatusRejected
	r.AdminComment = comment
	return true
}

func (r *Review) HoldForBlind() bool {
	if !r.CanTransitionTo(StatusBlindHeld) {
		return false
	}
	r.Status = StatusBlindHeld
	return true
}

func (r *Review) Publish() bool {
	if !r.CanTransitionTo(StatusPublic) {
		return false
	}
	r.Status = StatusPublic
	return true
}

func (r *Review) Suspend(comment string) bool {
	if !r.CanTransitionTo(StatusSuspended) {
		return false
	}
	r.Status = StatusSuspended
	r.AdminComment = comment
	return true
}

// Helpful is one reviewer's vote on another reviewer's review.
type Helpful struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id,string"`
	ReviewID   snowflake.ID `gorm:"uniqueIndex:uk_review_helpful;not null" json:"review_id,string"`
	ReviewerID snowflake.ID `gorm:"uniqueIndex:uk_review_helpful;not null" json:"reviewer_id,string"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (Helpful) TableName() string { return "review_helpfuls" }

// StoreVisit counts how many of a reviewer's reviews for one store
// have gone public. The counter only moves on the PUBLIC transition.
type StoreVisit struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id,string"`
	ReviewerID snowflake.ID `gorm:"uniqueIndex:uk_reviewer_store_visit;not null" json:"reviewer_id,string"`
	StoreID    snowflake.ID `gorm:"uniqueIndex:uk_reviewer_store_visit;not null" json:"store_id,string"`
	VisitCount int64        `gorm:"not null;default:0" json:"visit_count"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (StoreVisit) TableName() string { return "reviewer_store_visits" }
