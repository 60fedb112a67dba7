// Package settings stores the planner's per-user boolean flags.
//
// The schema is fixed: every flag has a name and a default, and unknown names
// are rejected with ErrUnknownSetting. Flags are persisted as JSON rows in a
// state.Store under the "settings." prefix, so resetting them is a single
// prefix sweep.
//
// Usage:
//
//	s := settings.New(store)
//	if err := s.Set(ctx, settings.TourCompleted, true); err != nil {
//	    return err
//	}
//	done, _ := s.Get(ctx, settings.TourCompleted)
package settings
