// Package recurrence decides whether a scheduled task is due on a calendar day.
//
// A Rule carries the five recurrence fields of a task row. Evaluation is a
// pure function of the rule and the target day: no clock reads, no state.
// Gates are applied in a fixed order before any pattern logic:
//
//  1. creation day after the target day   → not due
//  2. repeat end date before the target   → not due
//  3. pattern none                        → due iff scheduled date == target
//  4. scheduled date after the target     → not due (recurrence not started)
//  5. daily / weekend / weekly / monthly / custom pattern rules
//
// Malformed rows never panic or error: an unparseable date or unknown
// pattern evaluates to "not due" so one bad record cannot break a list view.
// Use Rule.Validate on write paths to reject such rows up front.
//
// # Monthly rules
//
// A monthly rule fires on the scheduled date's day of month. When that day
// does not exist in the target month (anchor 31 in April), MonthlySkip does
// not fire that month and MonthlyClamp fires on the month's last day.
package recurrence
