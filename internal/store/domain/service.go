package domain

import (
	"context"
	"errors"

	"github.com/platewise/platewise/pkg/db/pagination"
)

var (
	ErrNotFound      = errors.New("store not found")
	ErrInvalidID     = errors.New("invalid store id")
	ErrInvalidName   = errors.New("store name is required")
	ErrAdminRequired = errors.New("admin role required")
)

type RegisterRequest struct {
	Name       string  `json:"name" binding:"required"`
	CategoryID string  `json:"category_id"`
	RegionID   string  `json:"region_id"`
	Address    string  `json:"address"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type ListRequest struct {
	pagination.Pagination
	CategoryID string `form:"category_id"`
	RegionID   string `form:"region_id"`
	Keyword    string `form:"keyword"`
}

type ListResponse struct {
	Stores   []View              `json:"stores"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Store, error)
	Get(ctx context.Context, id string) (View, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}
