package authctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ReviewerKey is the request context key for the authenticated reviewer ID.
type ReviewerKey struct{}

// RoleKey is the request context key for the authenticated reviewer role.
type RoleKey struct{}

// WithReviewerID stores the authenticated reviewer ID in the context.
func WithReviewerID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, ReviewerKey{}, id)
}

// ReviewerIDFromContext returns the authenticated reviewer ID, if set.
func ReviewerIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(ReviewerKey{}).(type) {
	case snowflake.ID:
		return typed, true
	case int64:
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// WithRole stores the authenticated reviewer role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey{}, role)
}

// RoleFromContext returns the authenticated reviewer role, if set.
func RoleFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	role, ok := ctx.Value(RoleKey{}).(string)
	return role, ok
}
