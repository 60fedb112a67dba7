// Package localdate converts moments into calendar days in the device's
// local time zone.
//
// A Day is the single representation of "what day is it" used by the
// recurrence and streak packages. Days are always derived from the local
// wall clock of a moment, never by truncating it in UTC, so 23:30 and 00:30
// the next morning are different days regardless of the zone's UTC offset.
//
//	today := localdate.Today()
//	created := localdate.Of(task.CreatedAt)
//	if created.After(today) {
//	    // not yet created
//	}
//
// Day values are comparable with == and render as YYYY-MM-DD.
package localdate
