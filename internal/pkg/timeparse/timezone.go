package timeparse

import (
	"fmt"
	"strings"
	"time"

	appErrors "memento/internal/pkg/errors"
)

var timezoneAliases = map[string]string{
	"hawaii":   "US/Hawaii",
	"alaska":   "US/Alaska",
	"pacific":  "US/Pacific",
	"mountain": "US/Mountain",
	"central":  "US/Central",
	"eastern":  "US/Eastern",
	"atlantic": "Canada/Atlantic",
	"utc":      "UTC",
}

// ResolveTimezone loads an IANA zone by name. A few common region names
// ("eastern", "pacific", ...) are accepted case-insensitively as aliases.
func ResolveTimezone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.ErrUnknownTimezone
	}
	if alias, ok := timezoneAliases[strings.ToLower(name)]; ok {
		name = alias
	}
	// time.LoadLocation treats "" and "Local" specially, neither is a user zone
	if strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("%w: %s", appErrors.ErrUnknownTimezone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appErrors.ErrUnknownTimezone, name)
	}
	return loc, nil
}
