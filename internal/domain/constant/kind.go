package constant

// OwnerKind tells which scope a reminder list belongs to.
type OwnerKind string

const (
	// OwnerUser reminders are sent to a single user by direct message.
	OwnerUser OwnerKind = "user"
	// OwnerRole reminders mention a role inside a channel.
	OwnerRole OwnerKind = "role"
)

func (k OwnerKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k OwnerKind) Valid() bool {
	return k == OwnerUser || k == OwnerRole
}

// Due classifies a reminder relative to the scan time.
type Due int

const (
	NotDue Due = iota
	DueNow
	// Stale reminders were due longer ago than the staleness window; they are dropped undelivered.
	Stale
)

func (d Due) String() string {
	switch d {
	case NotDue:
		return "not_due"
	case DueNow:
		return "due"
	case Stale:
		return "stale"
	}
	return "unknown"
}
