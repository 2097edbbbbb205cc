package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	appErrors "memento/internal/pkg/errors"
)

type unit int

const (
	unitSecond unit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitYear
)

var unitAliases = map[string]unit{
	"s": unitSecond, "sec": unitSecond, "secs": unitSecond, "second": unitSecond, "seconds": unitSecond,
	"m": unitMinute, "min": unitMinute, "mins": unitMinute, "minute": unitMinute, "minutes": unitMinute,
	"h": unitHour, "hr": unitHour, "hrs": unitHour, "hour": unitHour, "hours": unitHour,
	"d": unitDay, "day": unitDay, "days": unitDay,
	"w": unitWeek, "wk": unitWeek, "wks": unitWeek, "week": unitWeek, "weeks": unitWeek,
	"mo": unitMonth, "mon": unitMonth, "mos": unitMonth, "month": unitMonth, "months": unitMonth,
	"y": unitYear, "yr": unitYear, "yrs": unitYear, "year": unitYear, "years": unitYear,
}

var fixedUnits = map[unit]time.Duration{
	unitSecond: time.Second,
	unitMinute: time.Minute,
	unitHour:   time.Hour,
	unitDay:    24 * time.Hour,
	unitWeek:   7 * 24 * time.Hour,
}

var (
	groupRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]*)`)
	separatorRe = regexp.MustCompile(`^(?:\s|,|\band\b)*$`)
)

// longestMonth bounds a calendar month when checking that a span stays representable.
const longestMonth = 31 * 24 * time.Hour

// span is a parsed relative offset. Months and years are kept apart from the fixed
// part because their length depends on the calendar position they are applied to.
type span struct {
	months int
	fixed  time.Duration
}

func parseUnit(s string) (unit, bool) {
	u, ok := unitAliases[strings.ToLower(s)]
	return u, ok
}

// parseSpan reads a whitespace separated list of "<amount>[unit]" groups such as
// "2 hours 30 minutes", "1h30m" or "90". It reports false when expr is anything else,
// and ErrDurationTooLong when the offset does not fit in a time.Duration.
func parseSpan(expr string, defaultUnit unit) (span, bool, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	expr = strings.TrimPrefix(expr, "in ")
	expr = strings.TrimSuffix(expr, " from now")
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return span{}, false, nil
	}

	matches := groupRe.FindAllStringSubmatchIndex(expr, -1)
	if len(matches) == 0 {
		return span{}, false, nil
	}

	var out span
	prev := 0
	for _, m := range matches {
		if !separatorRe.MatchString(expr[prev:m[0]]) {
			return span{}, false, nil
		}
		prev = m[1]

		amount, err := strconv.ParseFloat(expr[m[2]:m[3]], 64)
		if err != nil {
			return span{}, false, nil
		}
		u := defaultUnit
		if name := expr[m[4]:m[5]]; name != "" {
			var ok bool
			if u, ok = parseUnit(name); !ok {
				return span{}, false, nil
			}
		}
		if !out.add(amount, u) {
			return span{}, true, appErrors.ErrDurationTooLong
		}
	}
	if !separatorRe.MatchString(expr[prev:]) {
		return span{}, false, nil
	}
	return out, true, nil
}

// add accumulates one group. It reports false, leaving s unchanged, when the total
// would no longer fit in a time.Duration with every month counted as 31 days.
func (s *span) add(amount float64, u unit) bool {
	var whole, fixed float64
	switch u {
	case unitMonth, unitYear:
		months := amount
		if u == unitYear {
			months *= 12
		}
		var frac float64
		whole, frac = math.Modf(months)
		// a fractional month is counted as 30 days
		fixed = frac * float64(30*24*time.Hour)
	default:
		fixed = amount * float64(fixedUnits[u])
	}

	total := float64(s.fixed) + fixed + (float64(s.months)+whole)*float64(longestMonth)
	if total >= math.MaxInt64 {
		return false
	}
	s.months += int(whole)
	s.fixed += time.Duration(fixed)
	return true
}

// applyTo returns now shifted by the span. Calendar units are applied in loc so that
// "1 month" keeps the local wall clock time across DST changes.
func (s span) applyTo(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	if s.months != 0 {
		t = t.AddDate(0, s.months, 0)
	}
	return t.Add(s.fixed)
}
