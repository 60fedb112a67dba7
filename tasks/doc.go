// Package tasks stores planner tasks and their completion records.
//
// A Manager persists task rows and per-day completion records in a
// state.Store and keeps an in-memory full-text index of task titles and
// notes.
//
// # Basic Usage
//
//	store := state.NewMemoryStore()
//	mgr, err := tasks.NewManager(store)
//
//	id, err := mgr.Create(ctx, tasks.Task{
//	    Title: "Morning pages",
//	    Rule: recurrence.Rule{
//	        RepeatPattern: recurrence.PatternWeekly,
//	        RepeatDays:    []int{1, 3, 5},
//	    },
//	})
//
//	today := localdate.Today()
//	due, err := mgr.DueOn(ctx, today)
//	err = mgr.MarkDone(ctx, id, today)
//
// # Completions
//
// A task can only be marked done on a day it is due. In particular it can
// never be completed on a day before it was created, so streak history
// cannot be filled in retroactively.
//
// # Creation time
//
// CreatedAt is set once by Create and preserved by Update. Editing a task's
// recurrence never moves its creation gate.
//
// # Thread Safety
//
// Manager is safe for concurrent use.
package tasks
