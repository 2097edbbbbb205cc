package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"memento/internal/application/dto"
	"memento/internal/application/store"
	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
	appErrors "memento/internal/pkg/errors"
	"memento/internal/pkg/logger"
	"memento/internal/pkg/timeparse"
)

type reminderService struct {
	userStore     *store.ReminderStore
	roleStore     *store.ReminderStore
	userSvc       UserService
	resolver      TimeResolver
	maxTextLength int
	log           logger.Logger
}

// NewReminderService creates a new instance of ReminderService implementation.
func NewReminderService(
	userStore *store.ReminderStore,
	roleStore *store.ReminderStore,
	userSvc UserService,
	resolver TimeResolver,
	maxTextLength int,
	log logger.Logger,
) ReminderService {
	return &reminderService{
		userStore:     userStore,
		roleStore:     roleStore,
		userSvc:       userSvc,
		resolver:      resolver,
		maxTextLength: maxTextLength,
		log:           log,
	}
}

// CreateUserReminder resolves the request time and stores a personal reminder.
func (s *reminderService) CreateUserReminder(ctx context.Context, req dto.CreateUserReminderRequest) (*dto.ReminderResponse, error) {
	owner := entity.UserOwner(req.UserID)
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidOwner, err)
	}
	return s.create(ctx, s.userStore, owner, req.UserID, req.Command, req.Time, req.Text, req.Timezone)
}

// CreateRoleReminder resolves the request time and stores a reminder for a role in a channel.
func (s *reminderService) CreateRoleReminder(ctx context.Context, req dto.CreateRoleReminderRequest) (*dto.ReminderResponse, error) {
	owner := entity.RoleOwner(req.RoleID, req.ChannelID)
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidOwner, err)
	}
	if req.CreatedBy == "" {
		return nil, fmt.Errorf("%w: created_by is required", appErrors.ErrInvalidOwner)
	}
	return s.create(ctx, s.roleStore, owner, req.CreatedBy, req.Command, req.Time, req.Text, req.Timezone)
}

func (s *reminderService) create(ctx context.Context, st *store.ReminderStore, owner entity.Owner, createdBy, command, timeExpr, text, timezone string) (*dto.ReminderResponse, error) {
	if command != "" {
		var err error
		if timeExpr, text, err = ParseCommand(command); err != nil {
			return nil, err
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > s.maxTextLength {
		return nil, fmt.Errorf("%w: at most %d characters", appErrors.ErrTextTooLong, s.maxTextLength)
	}
	if strings.TrimSpace(timeExpr) == "" {
		return nil, appErrors.ErrUnparseableTime
	}

	if timezone == "" {
		tz, err := s.userSvc.GetTimezone(ctx, createdBy)
		if err != nil {
			return nil, err
		}
		timezone = tz
	}
	// aliases such as "eastern" are stored under their IANA name so they render later
	loc, err := timeparse.ResolveTimezone(timezone)
	if err != nil {
		return nil, err
	}
	timezone = loc.String()

	dueAt, err := s.resolver.Resolve(timeExpr, timezone)
	if err != nil {
		return nil, err
	}

	r, err := st.Create(ctx, owner, createdBy, dueAt, text, timezone)
	if err != nil {
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Created reminder %s for %s due at %s", r.ID, owner, r.DueAt.Format(entity.TimestampFormat)))

	resp := dto.ToReminderResponse(r)
	return &resp, nil
}

// ListUserReminders lists a user's pending reminders.
func (s *reminderService) ListUserReminders(ctx context.Context, userID string) ([]dto.ReminderResponse, error) {
	return dto.ToReminderResponseList(s.userStore.List(entity.UserOwner(userID))), nil
}

// ListRoleReminders lists the pending reminders of a role across all channels, ordered
// by due time. Positions in this listing are what DeleteReminder accepts for the role.
func (s *reminderService) ListRoleReminders(ctx context.Context, roleID string) ([]dto.ReminderResponse, error) {
	return dto.ToReminderResponseList(s.roleListing(roleID)), nil
}

// ListChannelReminders lists the pending role reminders of a channel across all roles.
// The listing mixes several roles, so entries carry no position; they are deleted by id.
func (s *reminderService) ListChannelReminders(ctx context.Context, channelID string) ([]dto.ReminderResponse, error) {
	list := s.roleStore.Filter(func(r *entity.Reminder) bool { return r.Owner.ChannelID == channelID })
	resp := make([]dto.ReminderResponse, len(list))
	for i, r := range list {
		resp[i] = dto.ToReminderResponse(r)
	}
	return resp, nil
}

// DeleteReminder removes the reminder identified by id or 1-based position. User
// positions follow ListUserReminders; role positions follow ListRoleReminders.
func (s *reminderService) DeleteReminder(ctx context.Context, owner entity.Owner, ref string) (*dto.ReminderResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidOwner, err)
	}
	st := s.userStore
	find := st.Find
	if owner.Kind == constant.OwnerRole {
		st = s.roleStore
		find = s.findRoleReminder
	}

	r, err := find(owner, ref)
	if err != nil {
		return nil, err
	}
	if err := st.Delete(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Deleted reminder %s of %s", r.ID, owner))

	resp := dto.ToReminderResponse(r)
	return &resp, nil
}

func (s *reminderService) roleListing(roleID string) []*entity.Reminder {
	return s.roleStore.Filter(func(r *entity.Reminder) bool { return r.Owner.RoleID == roleID })
}

// findRoleReminder matches ref as an id in the owner's list first, then as a position in
// the role listing. A position naming a reminder of another channel is not found.
func (s *reminderService) findRoleReminder(owner entity.Owner, ref string) (*entity.Reminder, error) {
	ref = strings.TrimSpace(ref)
	for _, r := range s.roleStore.List(owner) {
		if r.ID == ref {
			return r, nil
		}
	}
	listing := s.roleListing(owner.RoleID)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(listing) {
		if r := listing[n-1]; r.Owner.ChannelID == owner.ChannelID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", appErrors.ErrReminderNotFound, ref)
}

// ClearUserReminders removes every reminder of a user.
func (s *reminderService) ClearUserReminders(ctx context.Context, userID string) (int, error) {
	owner := entity.UserOwner(userID)
	if err := owner.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", appErrors.ErrInvalidOwner, err)
	}
	n, err := s.userStore.Clear(ctx, owner)
	if err != nil {
		return 0, err
	}
	s.log.Info(fmt.Sprintf("Cleared %d reminders of user %s", n, userID))
	return n, nil
}
