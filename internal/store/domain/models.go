package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Store carries two published scores. AvgRating is the plain mean of
// public composites; ScoreWeighted is the trust-and-recency weighted
// score blended toward the platform baseline. Both stay hidden while
// the store is blind.
type Store struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id,string"`
	Name             string       `gorm:"size:200;not null" json:"name"`
	CategoryID       string       `gorm:"size:64;index" json:"category_id"`
	RegionID         string       `gorm:"size:64;index" json:"region_id"`
	Address          string       `gorm:"size:500" json:"address"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	AvgRating        float64      `json:"-"`
	ScoreWeighted    float64      `json:"-"`
	ReviewCount      int64        `gorm:"not null;default:0" json:"review_count"`
	ReviewCountValid int64        `gorm:"not null;default:0" json:"-"`
	Blind            bool         `gorm:"not null;default:true" json:"blind"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Store) TableName() string { return "stores" }

// View is the read shape returned to clients. Scores are pointers so
// blind stores serialize them as null rather than a misleading zero.
type View struct {
	ID               snowflake.ID `json:"id,string"`
	Name             string       `json:"name"`
	CategoryID       string       `json:"category_id"`
	RegionID         string       `json:"region_id"`
	Address          string       `json:"address"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	ReviewCount      int64        `json:"review_count"`
	Blind            bool         `json:"blind"`
	AvgRating        *float64     `json:"avg_rating"`
	ScoreWeighted    *float64     `json:"score_weighted"`
	ReviewCountValid *int64       `json:"review_count_valid"`
	CreatedAt        time.Time    `json:"created_at"`
}

// ToView masks the score fields for blind stores.
func (s Store) ToView() View {
	v := View{
		ID:          s.ID,
		Name:        s.Name,
		CategoryID:  s.CategoryID,
		RegionID:    s.RegionID,
		Address:     s.Address,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		ReviewCount: s.ReviewCount,
		Blind:       s.Blind,
		CreatedAt:   s.CreatedAt,
	}
	if !s.Blind {
		avg := s.AvgRating
		weighted := s.ScoreWeighted
		valid := s.ReviewCountValid
		v.AvgRating = &avg
		v.ScoreWeighted = &weighted
		v.ReviewCountValid = &valid
	}
	return v
}
