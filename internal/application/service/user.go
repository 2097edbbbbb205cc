package service

import (
	"context"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	// LoadCache warms the in-memory timezone cache from the repository.
	LoadCache(ctx context.Context) error
	// SetTimezone validates and stores a user's timezone. It returns the canonical zone name.
	SetTimezone(ctx context.Context, userID, timezone string) (string, error)
	// GetTimezone returns the user's stored timezone, or ErrTimezoneNotSet.
	GetTimezone(ctx context.Context, userID string) (string, error)
}
