package timeparse

import (
	"fmt"
	"strings"
	"time"

	"memento/internal/pkg/clock"
	appErrors "memento/internal/pkg/errors"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Options tunes how expressions are interpreted and which results are accepted.
type Options struct {
	// DefaultUnit applies to bare numbers such as "15". Defaults to minutes.
	DefaultUnit string
	// MinDuration rejects instants closer to now than this. Zero disables the check.
	MinDuration time.Duration
	// MaxDuration rejects instants further from now than this. Zero disables the check.
	MaxDuration time.Duration
}

// Resolver turns a user supplied time expression into an absolute instant.
// It has no mutable state besides its clock, so the same input, zone and now
// always resolve to the same instant.
type Resolver struct {
	clock       clock.Clock
	parser      *when.Parser
	defaultUnit unit
	opts        Options
}

// New creates a new instance of Resolver.
func New(clk clock.Clock, opts Options) (*Resolver, error) {
	defaultUnit := unitMinute
	if opts.DefaultUnit != "" {
		u, ok := parseUnit(opts.DefaultUnit)
		if !ok {
			return nil, fmt.Errorf("unknown default time unit %q", opts.DefaultUnit)
		}
		defaultUnit = u
	}
	if opts.MaxDuration > 0 && opts.MinDuration > opts.MaxDuration {
		return nil, fmt.Errorf("minimum duration %s exceeds maximum %s", opts.MinDuration, opts.MaxDuration)
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &Resolver{
		clock:       clk,
		parser:      parser,
		defaultUnit: defaultUnit,
		opts:        opts,
	}, nil
}

// Resolve interprets expr in the timezone tz and returns the UTC instant it names,
// truncated to whole seconds.
//
// Relative durations ("in 2 hours 30 minutes", "1h30m", "45") are tried first; any
// other text goes through the natural language parser ("tomorrow at 9pm").
func (r *Resolver) Resolve(expr, tz string) (time.Time, error) {
	loc, err := ResolveTimezone(tz)
	if err != nil {
		return time.Time{}, err
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, appErrors.ErrUnparseableTime
	}

	now := r.clock.Now().UTC()

	var at time.Time
	s, ok, err := parseSpan(expr, r.defaultUnit)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", err, expr)
	}
	if ok {
		at = s.applyTo(now, loc)
		if !at.After(now) {
			return time.Time{}, appErrors.ErrNonPositiveDuration
		}
	} else {
		res, err := r.parser.Parse(expr, now.In(loc))
		if err != nil || res == nil {
			return time.Time{}, fmt.Errorf("%w: %q", appErrors.ErrUnparseableTime, expr)
		}
		at = res.Time
	}

	at = at.UTC().Truncate(time.Second)
	if !at.After(now) {
		return time.Time{}, appErrors.ErrTimeNotInFuture
	}

	ahead := at.Sub(now)
	if r.opts.MinDuration > 0 && ahead < r.opts.MinDuration {
		return time.Time{}, fmt.Errorf("%w: must be at least %s ahead", appErrors.ErrDurationTooShort, r.opts.MinDuration)
	}
	if r.opts.MaxDuration > 0 && ahead > r.opts.MaxDuration {
		return time.Time{}, fmt.Errorf("%w: must be at most %s ahead", appErrors.ErrDurationTooLong, r.opts.MaxDuration)
	}
	return at, nil
}
