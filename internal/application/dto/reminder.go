package dto

import (
	"fmt"
	"strings"
	"time"

	"memento/internal/domain/entity"
)

// LocalTimeFormat is how due times are shown to users in their own timezone.
const LocalTimeFormat = "Mon Jan 2 2006 15:04 MST"

// ReminderResponse is the DTO for sending reminder information to the client (e.g., listing reminders).
type ReminderResponse struct {
	Position  int       `json:"position,omitempty"`
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id,omitempty"`
	RoleID    string    `json:"role_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	CreatedBy string    `json:"created_by"`
	Text      string    `json:"text"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
	Timezone  string    `json:"timezone"`
	LocalDue  string    `json:"local_due"`
}

// ToReminderResponse converts an entity.Reminder to a ReminderResponse DTO.
func ToReminderResponse(r *entity.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:        r.ID,
		Kind:      r.Owner.Kind.String(),
		UserID:    r.Owner.UserID,
		RoleID:    r.Owner.RoleID,
		ChannelID: r.Owner.ChannelID,
		CreatedBy: r.CreatedBy,
		Text:      r.Text,
		DueAt:     r.DueAt,
		CreatedAt: r.CreatedAt,
		Timezone:  r.Timezone,
		LocalDue:  FormatLocal(r.DueAt, r.Timezone),
	}
}

// ToReminderResponseList converts reminders to DTOs numbered from 1 in list order.
func ToReminderResponseList(reminders []*entity.Reminder) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(r)
		list[i].Position = i + 1
	}
	return list
}

// FormatLocal renders t in the named zone, falling back to UTC when the zone is unknown.
func FormatLocal(t time.Time, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	return t.In(loc).Format(LocalTimeFormat)
}

// FormatReminderList renders a numbered plain text listing for chat replies.
func FormatReminderList(list []ReminderResponse) string {
	if len(list) == 0 {
		return "You have no pending reminders."
	}
	var b strings.Builder
	b.WriteString("Your reminders:")
	for _, r := range list {
		fmt.Fprintf(&b, "\n%d. [%s] %s (%s)", r.Position, r.ID, r.Text, r.LocalDue)
	}
	return b.String()
}

// CreateUserReminderRequest is the DTO for creating a personal reminder. Either Command
// ("<time> | <text>") or Time and Text are given. Timezone overrides the user's stored zone.
type CreateUserReminderRequest struct {
	UserID   string `json:"-"`
	Command  string `json:"command,omitempty"`
	Time     string `json:"time,omitempty"`
	Text     string `json:"text,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// CreateRoleReminderRequest is the DTO for creating a reminder that mentions a role in a channel.
// The creator's stored timezone is used unless Timezone is given.
type CreateRoleReminderRequest struct {
	RoleID    string `json:"-"`
	ChannelID string `json:"-"`
	CreatedBy string `json:"created_by"`
	Command   string `json:"command,omitempty"`
	Time      string `json:"time,omitempty"`
	Text      string `json:"text,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}
