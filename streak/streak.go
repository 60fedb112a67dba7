package streak

import (
	"sort"

	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/recurrence"
)

// Item is a task as seen by the aggregator.
type Item struct {
	ID   string
	Rule recurrence.Rule
}

// Completion records that a task was marked done on a day.
type Completion struct {
	TaskID string
	Day    localdate.Day
}

// Completions is a set of completion records.
type Completions map[Completion]struct{}

// NewCompletions builds a set from records.
func NewCompletions(records ...Completion) Completions {
	c := make(Completions, len(records))
	for _, r := range records {
		c[r] = struct{}{}
	}
	return c
}

// Add records taskID as done on day.
func (c Completions) Add(taskID string, day localdate.Day) {
	c[Completion{TaskID: taskID, Day: day}] = struct{}{}
}

// Has reports whether taskID was done on day.
func (c Completions) Has(taskID string, day localdate.Day) bool {
	_, ok := c[Completion{TaskID: taskID, Day: day}]
	return ok
}

// Presence is one day of the presence grid.
type Presence struct {
	Day        localdate.Day `json:"day"`
	Applicable int           `json:"applicable"`
	Completed  int           `json:"completed"`
	Tier       Tier          `json:"tier"`

	// Due lists the applicable task IDs, sorted.
	Due []string `json:"due,omitempty"`
}

// Active reports whether at least one applicable task was completed.
func (p Presence) Active() bool {
	return p.Completed > 0
}

// Week is one Sunday-start week of the presence grid.
type Week struct {
	Start      localdate.Day `json:"start"`
	ActiveDays int           `json:"active_days"`
	Badge      Tier          `json:"badge"`
}

// Summary is the aggregate over a window of days.
type Summary struct {
	From       localdate.Day `json:"from"`
	Today      localdate.Day `json:"today"`
	Days       []Presence    `json:"days"`
	Weeks      []Week        `json:"weeks"`
	Current    int           `json:"current_streak"`
	Longest    int           `json:"longest_streak"`
	Returns    int           `json:"returns"`
	ActiveDays int           `json:"active_days"`
}

// Options configures an Aggregator.
type Options struct {
	// Evaluator decides which tasks apply on each day.
	Evaluator recurrence.Evaluator

	// Thresholds maps completion counts to tiers and badges.
	Thresholds Thresholds

	// PendingToday keeps the current streak alive while today has no
	// completion yet, counting it as ending yesterday.
	PendingToday bool

	// ReturnGap is the number of inactive days that must precede an
	// active day for it to count as a return. Values below 1 mean 1.
	ReturnGap int
}

// DefaultOptions returns the options used by the presence grid.
func DefaultOptions() Options {
	return Options{
		Thresholds: DefaultThresholds(),
		ReturnGap:  1,
	}
}

// Aggregator computes summaries.
type Aggregator struct {
	opts Options
}

// NewAggregator creates an aggregator.
func NewAggregator(opts Options) *Aggregator {
	if opts.ReturnGap < 1 {
		opts.ReturnGap = 1
	}
	return &Aggregator{opts: opts}
}

// Compute builds the summary for the days from..today inclusive.
func (a *Aggregator) Compute(items []Item, done Completions, from, today localdate.Day) Summary {
	s := Summary{From: from, Today: today}

	for _, day := range localdate.Range(from, today) {
		p := a.presence(items, done, day)
		if p.Active() {
			s.ActiveDays++
		}
		s.Days = append(s.Days, p)
	}

	s.Current = a.current(s.Days)
	s.Longest = longest(s.Days)
	s.Returns = a.returns(s.Days)
	s.Weeks = a.weeks(s.Days)
	return s
}

// Day computes the presence of a single day.
func (a *Aggregator) Day(items []Item, done Completions, day localdate.Day) Presence {
	return a.presence(items, done, day)
}

func (a *Aggregator) presence(items []Item, done Completions, day localdate.Day) Presence {
	p := Presence{Day: day}
	for _, it := range items {
		if !a.opts.Evaluator.Due(it.Rule, day) {
			continue
		}
		p.Applicable++
		p.Due = append(p.Due, it.ID)
		if done.Has(it.ID, day) {
			p.Completed++
		}
	}
	sort.Strings(p.Due)
	p.Tier = a.opts.Thresholds.DayTier(p.Completed, p.Applicable)
	return p
}

func (a *Aggregator) current(days []Presence) int {
	end := len(days) - 1
	if end < 0 {
		return 0
	}
	if a.opts.PendingToday && !days[end].Active() {
		end--
	}
	n := 0
	for i := end; i >= 0 && days[i].Active(); i-- {
		n++
	}
	return n
}

func longest(days []Presence) int {
	best, run := 0, 0
	for _, p := range days {
		if p.Active() {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

func (a *Aggregator) returns(days []Presence) int {
	n, gap := 0, 0
	seen := false
	for _, p := range days {
		if !p.Active() {
			gap++
			continue
		}
		if seen && gap >= a.opts.ReturnGap {
			n++
		}
		seen = true
		gap = 0
	}
	return n
}

func (a *Aggregator) weeks(days []Presence) []Week {
	var weeks []Week
	for _, p := range days {
		start := p.Day.StartOfWeek()
		if len(weeks) == 0 || weeks[len(weeks)-1].Start != start {
			weeks = append(weeks, Week{Start: start})
		}
		if p.Active() {
			weeks[len(weeks)-1].ActiveDays++
		}
	}
	for i := range weeks {
		weeks[i].Badge = a.opts.Thresholds.WeekBadge(weeks[i].ActiveDays)
	}
	return weeks
}
