package redis

import (
	"context"

	"memento/internal/domain/entity"
	"memento/internal/domain/repository"

	goredis "github.com/go-redis/redis"
	"github.com/pkg/errors"
)

const userConfigKey = KeyPrefix + "user_config"

type userConfigRepository struct {
	client *goredis.Client
}

// NewUserConfigRepository creates a UserConfigRepository storing timezones in a single hash.
func NewUserConfigRepository(client *goredis.Client) repository.UserConfigRepository {
	return &userConfigRepository{client: client}
}

// FindAll retrieves every stored user config.
func (r *userConfigRepository) FindAll(ctx context.Context) ([]*entity.UserConfig, error) {
	raw, err := r.client.WithContext(ctx).HGetAll(userConfigKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user configs")
	}
	configs := make([]*entity.UserConfig, 0, len(raw))
	for userID, tz := range raw {
		configs = append(configs, &entity.UserConfig{UserID: userID, Timezone: tz})
	}
	return configs, nil
}

// FindByUserID retrieves the config of a user.
func (r *userConfigRepository) FindByUserID(ctx context.Context, userID string) (*entity.UserConfig, error) {
	tz, err := r.client.WithContext(ctx).HGet(userConfigKey, userID).Result()
	if err == goredis.Nil {
		return nil, errors.Wrapf(repository.ErrNotFound, "user config %s", userID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find user config %s", userID)
	}
	return &entity.UserConfig{UserID: userID, Timezone: tz}, nil
}

// Save creates or replaces a user config.
func (r *userConfigRepository) Save(ctx context.Context, cfg *entity.UserConfig) error {
	err := r.client.WithContext(ctx).HSet(userConfigKey, cfg.UserID, cfg.Timezone).Err()
	return errors.Wrapf(err, "failed to save user config %s", cfg.UserID)
}
