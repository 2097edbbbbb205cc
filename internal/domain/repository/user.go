package repository

import (
	"context"
	"errors"

	"memento/internal/domain/entity"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserConfigRepository defines the interface for per-user settings.
type UserConfigRepository interface {
	// FindAll retrieves every stored user config (used to warm the cache on startup).
	FindAll(ctx context.Context) ([]*entity.UserConfig, error)
	// FindByUserID retrieves the config of a user, or ErrNotFound.
	FindByUserID(ctx context.Context, userID string) (*entity.UserConfig, error)
	// Save creates or replaces a user config.
	Save(ctx context.Context, cfg *entity.UserConfig) error
}
