package service

import (
	"context"

	"memento/internal/application/dto"
	"memento/internal/domain/entity"
)

// ReminderService defines the interface for reminder-related business logic.
type ReminderService interface {
	// CreateUserReminder resolves the request time and stores a personal reminder.
	CreateUserReminder(ctx context.Context, req dto.CreateUserReminderRequest) (*dto.ReminderResponse, error)
	// CreateRoleReminder resolves the request time and stores a reminder for a role in a channel.
	CreateRoleReminder(ctx context.Context, req dto.CreateRoleReminderRequest) (*dto.ReminderResponse, error)
	// ListUserReminders lists a user's pending reminders, numbered in creation order.
	ListUserReminders(ctx context.Context, userID string) ([]dto.ReminderResponse, error)
	// ListRoleReminders lists the pending reminders of a role across all channels, numbered in due order.
	ListRoleReminders(ctx context.Context, roleID string) ([]dto.ReminderResponse, error)
	// ListChannelReminders lists the pending role reminders of a channel across all roles, without positions.
	ListChannelReminders(ctx context.Context, channelID string) ([]dto.ReminderResponse, error)
	// DeleteReminder removes the reminder identified by id or by its 1-based position in
	// ListUserReminders (users) or ListRoleReminders (roles).
	DeleteReminder(ctx context.Context, owner entity.Owner, ref string) (*dto.ReminderResponse, error)
	// ClearUserReminders removes every reminder of a user and returns how many were removed.
	ClearUserReminders(ctx context.Context, userID string) (int, error)
}
