package domain

import (
	"context"
	"errors"
)

type RegisterRequest struct {
	Email    string
	Nickname string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	Reviewer    Reviewer `json:"reviewer"`
}

type UpdateProfileRequest struct {
	Nickname string
}

type AdminTierRequest struct {
	ReviewerID string
	Tier       Tier
}

type AdminRoleRequest struct {
	ReviewerID string
	Role       Role
}

type AdminPhoneVerificationRequest struct {
	ReviewerID string
	Verified   bool
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Reviewer, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	GetProfile(ctx context.Context) (Reviewer, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (Reviewer, error)

	Follow(ctx context.Context, targetID string) error
	Unfollow(ctx context.Context, targetID string) error

	AdminSetTier(ctx context.Context, req AdminTierRequest) (Reviewer, error)
	AdminSetRole(ctx context.Context, req AdminRoleRequest) (Reviewer, error)
	AdminSetPhoneVerification(ctx context.Context, req AdminPhoneVerificationRequest) (Reviewer, error)
}

var (
	ErrNotFound           = errors.New("reviewer_not_found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAdminRequired      = errors.New("admin_required")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrDuplicateNickname  = errors.New("duplicate_nickname")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidNickname    = errors.New("invalid_nickname")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidTier        = errors.New("invalid_tier")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidID          = errors.New("invalid_id")
	ErrSelfFollow         = errors.New("self_follow")
	ErrAlreadyFollowing   = errors.New("already_following")
	ErrFollowNotFound     = errors.New("follow_not_found")
	ErrSelfRoleChange     = errors.New("self_role_change")
)
