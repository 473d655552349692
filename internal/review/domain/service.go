package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/platewise/platewise/pkg/db/pagination"
)

var (
	ErrNotFound                  = errors.New("review not found")
	ErrStoreNotFound             = errors.New("store not found")
	ErrUnauthenticated           = errors.New("reviewer not authenticated")
	ErrForbidden                 = errors.New("not the review author")
	ErrAdminRequired             = errors.New("admin role required")
	ErrInvalidID                 = errors.New("invalid id")
	ErrInvalidScore              = errors.New("scores must be between 0.00 and 5.00 with at most two decimals")
	ErrInvalidContent            = errors.New("content is required")
	ErrCommentRequired           = errors.New("rejection comment is required")
	ErrNotPending                = errors.New("review is not pending")
	ErrNotEditable               = errors.New("review can no longer be edited")
	ErrPhoneVerificationRequired = errors.New("phone verification required")
	ErrDuplicateHelpful          = errors.New("already marked helpful")
	ErrHelpfulNotFound           = errors.New("helpful mark not found")
	ErrSelfHelpful               = errors.New("cannot mark own review helpful")
)

type CreateRequest struct {
	StoreID       string    `json:"store_id" binding:"required"`
	Title         string    `json:"title"`
	Content       string    `json:"content" binding:"required"`
	PartySize     int       `json:"party_size"`
	ScoreTaste    float64   `json:"score_taste"`
	ScoreValue    float64   `json:"score_value"`
	ScoreAmbiance float64   `json:"score_ambiance"`
	ScoreService  float64   `json:"score_service"`
	VisitDate     time.Time `json:"visit_date"`
}

type UpdateRequest struct {
	ReviewID      string  `json:"-"`
	Title         string  `json:"title"`
	Content       string  `json:"content" binding:"required"`
	PartySize     int     `json:"party_size"`
	ScoreTaste    float64 `json:"score_taste"`
	ScoreValue    float64 `json:"score_value"`
	ScoreAmbiance float64 `json:"score_ambiance"`
	ScoreService  float64 `json:"score_service"`
}

type ModerateRequest struct {
	ReviewID string `json:"-"`
	Comment  string `json:"comment"`
}

type ListByStoreRequest struct {
	pagination.Pagination
	StoreID string `form:"-"`
}

type ListMineRequest struct {
	pagination.Pagination
}

type ListPendingRequest struct {
	pagination.Pagination
}

// View is the public read shape. Scores are nil while the store is
// blind so unpublished numbers never leak through listings.
type View struct {
	ID             snowflake.ID `json:"id,string"`
	StoreID        snowflake.ID `json:"store_id,string"`
	ReviewerID     snowflake.ID `json:"reviewer_id,string"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	PartySize      int          `json:"party_size"`
	ScoreTaste     *float64     `json:"score_taste"`
	ScoreValue     *float64     `json:"score_value"`
	ScoreAmbiance  *float64     `json:"score_ambiance"`
	ScoreService   *float64     `json:"score_service"`
	ScoreComposite *float64     `json:"score_composite"`
	Status         Status       `json:"status"`
	VisitDate      time.Time    `json:"visit_date"`
	VisitCount     int64        `json:"visit_count"`
	HelpfulCount   int64        `json:"helpful_count"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ToView exposes scores only when the store is not blind.
func (r Review) ToView(storeBlind bool) View {
	v := View{
		ID:           r.ID,
		StoreID:      r.StoreID,
		ReviewerID:   r.ReviewerID,
		Title:        r.Title,
		Content:      r.Content,
		PartySize:    r.PartySize,
		Status:       r.Status,
		VisitDate:    r.VisitDate,
		VisitCount:   r.VisitCount,
		HelpfulCount: r.HelpfulCount,
		CreatedAt:    r.CreatedAt,
	}
	if !storeBlind {
		taste, value, ambiance, svc, composite := r.ScoreTaste, r.ScoreValue, r.ScoreAmbiance, r.ScoreService, r.ScoreComposite
		v.ScoreTaste = &taste
		v.ScoreValue = &value
		v.ScoreAmbiance = &ambiance
		v.ScoreService = &svc
		v.ScoreComposite = &composite
	}
	return v
}

type ListResponse struct {
	Reviews  []View              `json:"reviews"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Review, error)
	Update(ctx context.Context, req UpdateRequest) (Review, error)
	Delete(ctx context.Context, reviewID string) error
	Get(ctx context.Context, reviewID string) (View, error)
	ListByStore(ctx context.Context, req ListByStoreRequest) (ListResponse, error)
	ListMine(ctx context.Context, req ListMineRequest) ([]Review, pagination.PageInfo, error)
	MarkHelpful(ctx context.Context, reviewID string) error
	UnmarkHelpful(ctx context.Context, reviewID string) error

	ListPending(ctx context.Context, req ListPendingRequest) ([]Review, pagination.PageInfo, error)
	Approve(ctx context.Context, req ModerateRequest) (Review, error)
	Reject(ctx context.Context, req ModerateRequest) (Review, error)
}
