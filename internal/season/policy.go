// Package season holds the static table of per-season curfew adjustments.
package season

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/errs"
	"github.com/septivank/petdoor-curfew-worker/internal/timeofday"
)

// Season names an entry of the policy table
type Season string

const (
	Summer Season = "summer"
	Winter Season = "winter"
)

// Rule holds the adjustments applied to one season.
// Deltas are signed hours; the clamp bounds are local times.
type Rule struct {
	Season        Season              `mapstructure:"-"`
	SunriseDelta  float64             `mapstructure:"sunrise_delta_hours"`
	SunsetDelta   float64             `mapstructure:"sunset_delta_hours"`
	UnlockCeiling timeofday.TimeOfDay `mapstructure:"unlock_ceiling"`
	LockFloor     timeofday.TimeOfDay `mapstructure:"lock_floor"`
}

// SunriseOffset returns the sunrise delta as a duration
func (r Rule) SunriseOffset() time.Duration {
	return hours(r.SunriseDelta)
}

// SunsetOffset returns the sunset delta as a duration
func (r Rule) SunsetOffset() time.Duration {
	return hours(r.SunsetDelta)
}

func hours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}

// Validate checks that the window cannot wrap past midday
func (r Rule) Validate() error {
	if !r.UnlockCeiling.Before(r.LockFloor) {
		return fmt.Errorf("season %q: unlock ceiling %s must be before lock floor %s: %w",
			r.Season, r.UnlockCeiling, r.LockFloor, errs.ErrConfiguration)
	}
	return nil
}

// Policy is the immutable season table
type Policy struct {
	rules map[Season]Rule
}

// DefaultRules returns the table the door has always run with, as local clock
// bounds. These are the values the door actually received, one hour after the
// UTC-stored bounds of the earlier setup.
func DefaultRules() map[Season]Rule {
	return map[Season]Rule{
		Summer: {
			SunriseDelta:  0.5,
			SunsetDelta:   1.5,
			UnlockCeiling: timeofday.MustParse("09:30:00"),
			LockFloor:     timeofday.MustParse("18:30:00"),
		},
		Winter: {
			SunriseDelta:  0,
			SunsetDelta:   1,
			UnlockCeiling: timeofday.MustParse("08:00:00"),
			LockFloor:     timeofday.MustParse("16:00:00"),
		},
	}
}

// NewPolicy copies rules into a policy and validates every entry
func NewPolicy(rules map[Season]Rule) (*Policy, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: season policy is empty", errs.ErrConfiguration)
	}

	copied := make(map[Season]Rule, len(rules))
	var problems []string
	for name, rule := range rules {
		name = Season(strings.ToLower(strings.TrimSpace(string(name))))
		rule.Season = name
		if err := rule.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
		copied[name] = rule
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("%w: invalid season policy:\n  - %s", errs.ErrConfiguration, strings.Join(problems, "\n  - "))
	}

	return &Policy{rules: copied}, nil
}

// Lookup returns the rule for season
func (p *Policy) Lookup(season Season) (Rule, error) {
	rule, ok := p.rules[Season(strings.ToLower(string(season)))]
	if !ok {
		return Rule{}, fmt.Errorf("%w: unknown season %q (known: %s)", errs.ErrConfiguration, season, strings.Join(p.names(), ", "))
	}
	return rule, nil
}

func (p *Policy) names() []string {
	names := make([]string, 0, len(p.rules))
	for name := range p.rules {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
