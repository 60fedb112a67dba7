package streak

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/recurrence"
)

func day(s string) localdate.Day { return localdate.MustParse(s) }

func created(s string) time.Time {
	d := day(s)
	return time.Date(d.Year, d.Month, d.Day, 8, 0, 0, 0, time.UTC)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Evaluator = recurrence.Evaluator{Location: time.UTC}
	return opts
}

func daily(id, since string) Item {
	return Item{ID: id, Rule: recurrence.Rule{RepeatPattern: recurrence.PatternDaily, CreatedAt: created(since)}}
}

func doneOn(taskID string, days ...string) Completions {
	c := NewCompletions()
	for _, d := range days {
		c.Add(taskID, day(d))
	}
	return c
}

func TestDayTier(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		completed, applicable int
		want                  Tier
	}{
		{0, 0, TierNone},
		{0, 3, TierNone},
		{1, 3, TierBronze},
		{1, 2, TierSilver},
		{2, 3, TierSilver},
		{3, 3, TierGold},
		{1, 0, TierNone},
	}
	for _, tt := range tests {
		if got := th.DayTier(tt.completed, tt.applicable); got != tt.want {
			t.Errorf("DayTier(%d, %d) = %s, want %s", tt.completed, tt.applicable, got, tt.want)
		}
	}
}

func TestWeekBadge(t *testing.T) {
	th := DefaultThresholds()
	want := map[int]Tier{0: TierNone, 2: TierNone, 3: TierBronze, 4: TierBronze, 5: TierSilver, 6: TierSilver, 7: TierGold}
	for days, tier := range want {
		if got := th.WeekBadge(days); got != tier {
			t.Errorf("WeekBadge(%d) = %s, want %s", days, got, tier)
		}
	}
}

func TestStreaksAndReturns(t *testing.T) {
	items := []Item{daily("water", "2024-03-01")}
	done := doneOn("water",
		"2024-03-01", "2024-03-02", "2024-03-03",
		"2024-03-05", "2024-03-06",
		"2024-03-09", "2024-03-10",
	)

	agg := NewAggregator(testOptions())
	s := agg.Compute(items, done, day("2024-03-01"), day("2024-03-10"))

	if s.Current != 2 {
		t.Errorf("Current = %d, want 2", s.Current)
	}
	if s.Longest != 3 {
		t.Errorf("Longest = %d, want 3", s.Longest)
	}
	if s.Returns != 2 {
		t.Errorf("Returns = %d, want 2", s.Returns)
	}
	if s.ActiveDays != 7 {
		t.Errorf("ActiveDays = %d, want 7", s.ActiveDays)
	}
	if len(s.Days) != 10 {
		t.Errorf("len(Days) = %d, want 10", len(s.Days))
	}

	opts := testOptions()
	opts.ReturnGap = 2
	if got := NewAggregator(opts).Compute(items, done, day("2024-03-01"), day("2024-03-10")).Returns; got != 1 {
		t.Errorf("Returns with gap 2 = %d, want 1", got)
	}
}

func TestFirstActivityIsNotAReturn(t *testing.T) {
	items := []Item{daily("water", "2024-03-01")}
	done := doneOn("water", "2024-03-05", "2024-03-06")

	s := NewAggregator(testOptions()).Compute(items, done, day("2024-03-01"), day("2024-03-06"))
	if s.Returns != 0 {
		t.Errorf("Returns = %d, want 0", s.Returns)
	}
	if s.Current != 2 {
		t.Errorf("Current = %d, want 2", s.Current)
	}
}

func TestPendingToday(t *testing.T) {
	items := []Item{daily("water", "2024-03-01")}
	done := doneOn("water", "2024-03-09", "2024-03-10")

	strict := NewAggregator(testOptions()).Compute(items, done, day("2024-03-01"), day("2024-03-11"))
	if strict.Current != 0 {
		t.Errorf("Current = %d, want 0 when today is not done", strict.Current)
	}

	opts := testOptions()
	opts.PendingToday = true
	lenient := NewAggregator(opts).Compute(items, done, day("2024-03-01"), day("2024-03-11"))
	if lenient.Current != 2 {
		t.Errorf("Current = %d, want 2 with pending today", lenient.Current)
	}
}

func TestOnlyApplicableCompletionsCount(t *testing.T) {
	monday := Item{ID: "yoga", Rule: recurrence.Rule{
		RepeatPattern: recurrence.PatternWeekly,
		RepeatDays:    []int{1},
		CreatedAt:     created("2024-03-01"),
	}}
	// 2024-03-19 is a Tuesday.
	done := doneOn("yoga", "2024-03-18", "2024-03-19")

	s := NewAggregator(testOptions()).Compute([]Item{monday}, done, day("2024-03-18"), day("2024-03-19"))

	want := []Presence{
		{Day: day("2024-03-18"), Applicable: 1, Completed: 1, Tier: TierGold, Due: []string{"yoga"}},
		{Day: day("2024-03-19"), Applicable: 0, Completed: 0, Tier: TierNone},
	}
	if diff := cmp.Diff(want, s.Days); diff != "" {
		t.Errorf("Days mismatch (-want +got):\n%s", diff)
	}
}

func TestTasksAreNotApplicableBeforeCreation(t *testing.T) {
	items := []Item{daily("late", "2024-03-10")}
	// A completion dated before creation must not produce a past active day.
	done := doneOn("late", "2024-03-09", "2024-03-10")

	s := NewAggregator(testOptions()).Compute(items, done, day("2024-03-08"), day("2024-03-10"))
	if s.ActiveDays != 1 {
		t.Errorf("ActiveDays = %d, want 1", s.ActiveDays)
	}
	if s.Days[1].Applicable != 0 {
		t.Errorf("2024-03-09 applicable = %d, want 0", s.Days[1].Applicable)
	}
}

func TestDayTiersFromRatio(t *testing.T) {
	items := []Item{
		daily("a", "2024-03-01"),
		daily("b", "2024-03-01"),
		daily("c", "2024-03-01"),
	}
	done := NewCompletions(
		Completion{"a", day("2024-03-02")},
		Completion{"a", day("2024-03-03")}, Completion{"b", day("2024-03-03")},
		Completion{"a", day("2024-03-04")}, Completion{"b", day("2024-03-04")}, Completion{"c", day("2024-03-04")},
	)

	s := NewAggregator(testOptions()).Compute(items, done, day("2024-03-01"), day("2024-03-04"))

	var got []Tier
	for _, p := range s.Days {
		got = append(got, p.Tier)
	}
	want := []Tier{TierNone, TierBronze, TierSilver, TierGold}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
}

func TestWeeks(t *testing.T) {
	items := []Item{daily("water", "2024-03-01")}
	// 2024-03-03 .. 2024-03-09 is a full Sunday-start week.
	done := doneOn("water",
		"2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09",
		"2024-03-10", "2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14",
	)

	s := NewAggregator(testOptions()).Compute(items, done, day("2024-03-01"), day("2024-03-16"))

	want := []Week{
		{Start: day("2024-02-25"), ActiveDays: 0, Badge: TierNone},
		{Start: day("2024-03-03"), ActiveDays: 7, Badge: TierGold},
		{Start: day("2024-03-10"), ActiveDays: 5, Badge: TierSilver},
	}
	if diff := cmp.Diff(want, s.Weeks); diff != "" {
		t.Errorf("Weeks mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	items := []Item{
		daily("water", "2024-03-01"),
		{ID: "weekend", Rule: recurrence.Rule{RepeatPattern: recurrence.PatternWeekend, CreatedAt: created("2024-03-01")}},
	}
	done := doneOn("water", "2024-03-02", "2024-03-03", "2024-03-05")
	done.Add("weekend", day("2024-03-03"))

	agg := NewAggregator(testOptions())
	first := agg.Compute(items, done, day("2024-03-01"), day("2024-03-10"))
	second := agg.Compute(items, done, day("2024-03-01"), day("2024-03-10"))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recomputation differs (-first +second):\n%s", diff)
	}
}

func TestEmptyWindow(t *testing.T) {
	s := NewAggregator(testOptions()).Compute([]Item{daily("a", "2024-03-01")}, NewCompletions(), day("2024-03-10"), day("2024-03-09"))
	if len(s.Days) != 0 || s.Current != 0 || s.Longest != 0 || len(s.Weeks) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
}
