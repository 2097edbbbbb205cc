package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"memento/internal/domain/entity"
	"memento/internal/domain/repository"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"
)

type userService struct {
	userRepo repository.UserConfigRepository
	log      logger.Logger

	mu        sync.RWMutex
	timezones map[string]string
}

// NewUserService creates a new instance of UserService implementation.
func NewUserService(userRepo repository.UserConfigRepository, log logger.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		log:       log,
		timezones: make(map[string]string),
	}
}

// LoadCache warms the in-memory timezone cache from the repository.
func (s *userService) LoadCache(ctx context.Context) error {
	configs, err := s.userRepo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to load user configs", err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.mu.Lock()
	for _, cfg := range configs {
		if cfg.Timezone != "" {
			s.timezones[cfg.UserID] = cfg.Timezone
		}
	}
	s.mu.Unlock()
	s.log.Info(fmt.Sprintf("Loaded timezones for %d users", len(configs)))
	return nil
}

// SetTimezone validates and stores a user's timezone.
func (s *userService) SetTimezone(ctx context.Context, userID, timezone string) (string, error) {
	if userID == "" {
		return "", appErrors.ErrInvalidOwner
	}
	loc, err := timeparse.ResolveTimezone(timezone)
	if err != nil {
		return "", err
	}
	name := loc.String()

	if err := s.userRepo.Save(ctx, &entity.UserConfig{UserID: userID, Timezone: name}); err != nil {
		s.log.Error(fmt.Sprintf("Failed to save timezone for user %s", userID), err)
		return "", fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}

	s.mu.Lock()
	s.timezones[userID] = name
	s.mu.Unlock()

	s.log.Debug(fmt.Sprintf("Set timezone of user %s to %s", userID, name))
	return name, nil
}

// GetTimezone returns the user's stored timezone.
func (s *userService) GetTimezone(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	tz, ok := s.timezones[userID]
	s.mu.RUnlock()
	if ok {
		return tz, nil
	}

	cfg, err := s.userRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", appErrors.ErrTimezoneNotSet
		}
		s.log.Error(fmt.Sprintf("Failed to find config of user %s", userID), err)
		return "", fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	if cfg.Timezone == "" {
		return "", appErrors.ErrTimezoneNotSet
	}

	s.mu.Lock()
	s.timezones[userID] = cfg.Timezone
	s.mu.Unlock()
	return cfg.Timezone, nil
}
