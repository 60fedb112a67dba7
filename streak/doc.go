// Package streak derives presence tiers and streaks from tasks and their
// completion records.
//
// For every day in a window the aggregator asks the recurrence predicate
// which tasks were applicable, counts how many of those were completed, and
// from that derives:
//
//   - a per-day Tier (none, bronze, silver, gold) from the completion ratio
//   - the current streak: consecutive active days ending today
//   - the longest streak within the window
//   - the return count: active days that follow a gap after earlier activity
//   - a badge per Sunday-start week from the number of active days
//
// A day is active when at least one applicable task was completed.
// Completions of tasks that were not due that day are ignored.
//
// Nothing is cached. Compute is a pure function of its inputs, so editing a
// task's recurrence rule is reflected the next time the summary is built.
package streak
