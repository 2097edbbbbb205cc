package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"memento/internal/domain/constant"
)

// TimestampFormat is the layout of persisted due and creation times (always UTC).
const TimestampFormat = "2006-01-02T15:04:05Z"

// Owner is the scope a reminder is stored under: a single user, or a role mentioned in a channel.
type Owner struct {
	Kind      constant.OwnerKind
	UserID    string
	RoleID    string
	ChannelID string
}

// UserOwner returns the owner for a personal reminder.
func UserOwner(userID string) Owner {
	return Owner{Kind: constant.OwnerUser, UserID: userID}
}

// RoleOwner returns the owner for a reminder broadcast to a role in a channel.
func RoleOwner(roleID, channelID string) Owner {
	return Owner{Kind: constant.OwnerRole, RoleID: roleID, ChannelID: channelID}
}

// Key is the persistence key of the owner, unique within its kind.
func (o Owner) Key() string {
	if o.Kind == constant.OwnerRole {
		return o.RoleID + ":" + o.ChannelID
	}
	return o.UserID
}

// ParseOwnerKey is the inverse of Owner.Key.
func ParseOwnerKey(kind constant.OwnerKind, key string) (Owner, error) {
	switch kind {
	case constant.OwnerUser:
		o := UserOwner(key)
		return o, o.Validate()
	case constant.OwnerRole:
		parts := strings.SplitN(key, ":", 2)
		if len(parts) != 2 {
			return Owner{}, fmt.Errorf("malformed role owner key %q", key)
		}
		o := RoleOwner(parts[0], parts[1])
		return o, o.Validate()
	}
	return Owner{}, fmt.Errorf("unknown owner kind %q", kind)
}

// Validate reports whether all identities required by the kind are present.
func (o Owner) Validate() error {
	switch o.Kind {
	case constant.OwnerUser:
		if o.UserID == "" {
			return fmt.Errorf("user owner without user id")
		}
	case constant.OwnerRole:
		if o.RoleID == "" || o.ChannelID == "" {
			return fmt.Errorf("role owner needs both role and channel ids")
		}
	default:
		return fmt.Errorf("unknown owner kind %q", o.Kind)
	}
	return nil
}

func (o Owner) String() string {
	return o.Kind.String() + ":" + o.Key()
}

// Destination is where a fired reminder is delivered.
type Destination struct {
	Kind      constant.OwnerKind
	UserID    string
	RoleID    string
	ChannelID string
}

// Reminder is a pending timed notification.
type Reminder struct {
	ID        string
	Owner     Owner
	CreatedBy string
	DueAt     time.Time
	CreatedAt time.Time
	Text      string
	Timezone  string
}

// Destination resolves where the reminder is sent. Personal reminders go to the user
// that owns them; role reminders go to the channel and mention the role.
func (r *Reminder) Destination() Destination {
	if r.Owner.Kind == constant.OwnerRole {
		return Destination{Kind: constant.OwnerRole, RoleID: r.Owner.RoleID, ChannelID: r.Owner.ChannelID}
	}
	return Destination{Kind: constant.OwnerUser, UserID: r.Owner.UserID}
}

// Classify places the reminder relative to now. A reminder due exactly at now is due;
// one due at or before now-window is stale.
func (r *Reminder) Classify(now time.Time, window time.Duration) constant.Due {
	switch {
	case r.DueAt.After(now):
		return constant.NotDue
	case !r.DueAt.After(now.Add(-window)):
		return constant.Stale
	default:
		return constant.DueNow
	}
}

// Record is the persisted form of a reminder.
type Record struct {
	ID          string `json:"id" msgpack:"id"`
	Text        string `json:"text" msgpack:"text"`
	CreatedByID string `json:"created_by_id" msgpack:"created_by_id"`
	DtStr       string `json:"dt_str" msgpack:"dt_str"`
	CreatedStr  string `json:"created_str,omitempty" msgpack:"created_str,omitempty"`
	Timezone    string `json:"timezone" msgpack:"timezone"`
	RoleID      string `json:"role_id,omitempty" msgpack:"role_id,omitempty"`
	ChannelID   string `json:"channel_id,omitempty" msgpack:"channel_id,omitempty"`
}

// ToRecord converts the reminder to its persisted form.
func (r *Reminder) ToRecord() Record {
	rec := Record{
		ID:          r.ID,
		Text:        r.Text,
		CreatedByID: r.CreatedBy,
		DtStr:       r.DueAt.UTC().Format(TimestampFormat),
		Timezone:    r.Timezone,
	}
	if !r.CreatedAt.IsZero() {
		rec.CreatedStr = r.CreatedAt.UTC().Format(TimestampFormat)
	}
	if r.Owner.Kind == constant.OwnerRole {
		rec.RoleID = r.Owner.RoleID
		rec.ChannelID = r.Owner.ChannelID
	}
	return rec
}

// FromRecord rebuilds a reminder read back from storage for owner.
func FromRecord(owner Owner, rec Record) (*Reminder, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("record without id")
	}
	dueAt, err := time.Parse(TimestampFormat, rec.DtStr)
	if err != nil {
		return nil, fmt.Errorf("record %s has invalid dt_str %q: %w", rec.ID, rec.DtStr, err)
	}
	r := &Reminder{
		ID:        rec.ID,
		Owner:     owner,
		CreatedBy: rec.CreatedByID,
		DueAt:     dueAt.UTC(),
		Text:      rec.Text,
		Timezone:  rec.Timezone,
	}
	if rec.CreatedStr != "" {
		if createdAt, err := time.Parse(TimestampFormat, rec.CreatedStr); err == nil {
			r.CreatedAt = createdAt.UTC()
		}
	}
	if owner.Kind == constant.OwnerRole && rec.RoleID != "" &&
		(rec.RoleID != owner.RoleID || rec.ChannelID != owner.ChannelID) {
		return nil, fmt.Errorf("record %s targets %s:%s but is stored under %s", rec.ID, rec.RoleID, rec.ChannelID, owner)
	}
	return r, nil
}

// GenerateID derives the short reminder id from its creation inputs. A non-zero salt is
// mixed in when the plain id collides with one already in the owner's list.
func GenerateID(text string, dueAt time.Time, createdBy string, salt int) string {
	key := text + dueAt.UTC().Format(TimestampFormat) + createdBy
	if salt > 0 {
		key += "#" + strconv.Itoa(salt)
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[0:8]
}
