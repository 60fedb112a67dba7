package recurrence

import (
	"fmt"
	"time"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/localdate"
)

// Rule holds the recurrence fields of a task row.
type Rule struct {
	// ScheduledDate is the anchor day (YYYY-MM-DD). Empty means absent.
	ScheduledDate string `json:"scheduled_date,omitempty"`

	// RepeatPattern selects the rule family.
	RepeatPattern Pattern `json:"repeat_pattern"`

	// RepeatDays are weekdays 0 = Sunday .. 6 = Saturday, used by weekly and custom.
	RepeatDays []int `json:"repeat_days,omitempty"`

	// CreatedAt is when the task row was created. A zero value disables
	// the creation gate.
	CreatedAt time.Time `json:"created_at"`

	// RepeatEndDate is the last day the task can be due (YYYY-MM-DD). Empty means open-ended.
	RepeatEndDate string `json:"repeat_end_date,omitempty"`
}

// Validate reports rule fields that can never evaluate as the author intended.
func (r Rule) Validate() error {
	pattern := r.RepeatPattern
	if pattern == "" {
		pattern = PatternNone
	}
	if !pattern.Valid() {
		return errors.InvalidRule(fmt.Sprintf("unknown repeat pattern %q", pattern))
	}
	if r.ScheduledDate != "" {
		if _, err := localdate.Parse(r.ScheduledDate); err != nil {
			return errors.InvalidRule("scheduled date is malformed", errors.WithCause(err))
		}
	}
	if r.RepeatEndDate != "" {
		end, err := localdate.Parse(r.RepeatEndDate)
		if err != nil {
			return errors.InvalidRule("repeat end date is malformed", errors.WithCause(err))
		}
		if r.ScheduledDate != "" && end.Before(localdate.MustParse(r.ScheduledDate)) {
			return errors.InvalidRule("repeat end date is before scheduled date")
		}
	}
	for _, wd := range r.RepeatDays {
		if wd < 0 || wd > 6 {
			return errors.InvalidRule(fmt.Sprintf("repeat day %d out of range 0-6", wd))
		}
	}

	switch pattern {
	case PatternNone, PatternMonthly:
		if r.ScheduledDate == "" {
			return errors.InvalidRule(fmt.Sprintf("%s rule requires a scheduled date", pattern))
		}
	case PatternWeekly:
		if len(r.RepeatDays) == 0 && r.ScheduledDate == "" {
			return errors.InvalidRule("weekly rule requires repeat days or a scheduled date")
		}
	case PatternCustom:
		if len(r.RepeatDays) == 0 {
			return errors.InvalidRule("custom rule requires repeat days")
		}
	}
	return nil
}

// Evaluator evaluates rules in a fixed zone under a fixed monthly policy.
// The zero value uses the process-local zone and MonthlySkip.
type Evaluator struct {
	// Location is the zone used to derive the creation day. Nil means time.Local.
	Location *time.Location

	// Monthly handles anchors beyond the end of a shorter month.
	Monthly MonthlyPolicy
}

// Default returns the evaluator for the process-local zone with MonthlySkip.
func Default() Evaluator {
	return Evaluator{}
}

// Due reports whether r is due on day using Default().
func Due(r Rule, day localdate.Day) bool {
	return Default().Due(r, day)
}

// DueOn reports whether r is due on the YYYY-MM-DD day using Default().
func DueOn(r Rule, day string) bool {
	return Default().DueOn(r, day)
}

// DueOn parses day and evaluates r. A malformed day is never due.
func (e Evaluator) DueOn(r Rule, day string) bool {
	target, err := localdate.Parse(day)
	if err != nil {
		return false
	}
	return e.Due(r, target)
}

// Due reports whether r is due on target.
func (e Evaluator) Due(r Rule, target localdate.Day) bool {
	if !r.CreatedAt.IsZero() && localdate.In(r.CreatedAt, e.Location).After(target) {
		return false
	}

	if r.RepeatEndDate != "" {
		end, err := localdate.Parse(r.RepeatEndDate)
		if err != nil {
			return false
		}
		if target.After(end) {
			return false
		}
	}

	var anchor localdate.Day
	hasAnchor := r.ScheduledDate != ""
	if hasAnchor {
		var err error
		if anchor, err = localdate.Parse(r.ScheduledDate); err != nil {
			return false
		}
	}

	if r.RepeatPattern == PatternNone || r.RepeatPattern == "" {
		return hasAnchor && anchor == target
	}

	if hasAnchor && anchor.After(target) {
		return false
	}

	wd := target.Weekday()
	switch r.RepeatPattern {
	case PatternDaily:
		return true
	case PatternWeekend:
		return wd == 0 || wd == 6
	case PatternWeekly:
		if len(r.RepeatDays) > 0 {
			return containsDay(r.RepeatDays, wd)
		}
		return hasAnchor && anchor.Weekday() == wd
	case PatternMonthly:
		return hasAnchor && e.monthlyMatch(anchor, target)
	case PatternCustom:
		return containsDay(r.RepeatDays, wd)
	}
	return false
}

func (e Evaluator) monthlyMatch(anchor, target localdate.Day) bool {
	if target.Day == anchor.Day {
		return true
	}
	if e.Monthly != MonthlyClamp {
		return false
	}
	last := target.DaysInMonth()
	return anchor.Day > last && target.Day == last
}

// Occurrences returns the days in [from, to] on which r is due.
func (e Evaluator) Occurrences(r Rule, from, to localdate.Day) []localdate.Day {
	var due []localdate.Day
	for _, d := range localdate.Range(from, to) {
		if e.Due(r, d) {
			due = append(due, d)
		}
	}
	return due
}

// Next returns the first day strictly after after, within horizon days, on
// which r is due.
func (e Evaluator) Next(r Rule, after localdate.Day, horizon int) (localdate.Day, bool) {
	for i := 1; i <= horizon; i++ {
		d := after.AddDays(i)
		if e.Due(r, d) {
			return d, true
		}
	}
	return localdate.Day{}, false
}

func containsDay(days []int, wd int) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
