// Package planner answers the questions the planner screens ask: which tasks
// are due on a day, what is coming up, and how the user's streak looks.
//
// A Planner sits on top of a tasks.Repository. It evaluates recurrence rules
// with a single recurrence.Evaluator and feeds the same evaluator to the
// streak aggregator, so "due" means the same thing on the daily list and in
// the presence grid.
//
// Tasks and completions are loaded concurrently for each request. Every
// operation opens a "planner.<op>" span on the configured tracer.
package planner
