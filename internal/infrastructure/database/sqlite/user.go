package sqlite

import (
	"context"

	"memento/internal/domain/entity"
	"memento/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userConfigRepository struct {
	db *gorm.DB
}

// NewUserConfigRepository creates a new instance of UserConfigRepository.
func NewUserConfigRepository(db *gorm.DB) repository.UserConfigRepository {
	return &userConfigRepository{db: db}
}

// FindAll retrieves every stored user config.
func (r *userConfigRepository) FindAll(ctx context.Context) ([]*entity.UserConfig, error) {
	var configs []*entity.UserConfig
	if err := r.db.WithContext(ctx).Find(&configs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load user configs")
	}
	return configs, nil
}

// FindByUserID retrieves the config of a user.
func (r *userConfigRepository) FindByUserID(ctx context.Context, userID string) (*entity.UserConfig, error) {
	var cfg entity.UserConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(repository.ErrNotFound, "user config %s", userID)
		}
		return nil, errors.Wrapf(err, "failed to find user config %s", userID)
	}
	return &cfg, nil
}

// Save creates or replaces a user config.
func (r *userConfigRepository) Save(ctx context.Context, cfg *entity.UserConfig) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timezone"}),
	}).Create(cfg).Error
	return errors.Wrapf(err, "failed to save user config %s", cfg.UserID)
}
