package tasks

import (
	"context"
	"time"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/streak"
)

// Common errors.
var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New(errors.ErrCodeNotFound, "task not found")

	// ErrTaskExists indicates a task with the same ID already exists.
	ErrTaskExists = errors.New(errors.ErrCodeAlreadyExists, "task already exists")

	// ErrInvalidTask indicates the task is missing required fields.
	ErrInvalidTask = errors.New(errors.ErrCodeInvalidInput, "invalid task")

	// ErrNotDue indicates a completion was recorded for a day the task is not due.
	ErrNotDue = errors.New(errors.ErrCodeNotDue, "task is not due on that day")

	// ErrStoreClosed indicates the underlying store has been closed.
	ErrStoreClosed = errors.New(errors.ErrCodeUnavailable, "store closed")
)

// Task is a planner task row.
type Task struct {
	// ID is the unique identifier for the task.
	// Generated automatically on create if empty.
	ID string `json:"id"`

	// Title is shown in the daily list.
	Title string `json:"title"`

	// Notes is free text attached to the task.
	Notes string `json:"notes,omitempty"`

	// Rule holds the recurrence fields, including CreatedAt.
	recurrence.Rule

	// UpdatedAt is when the row was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone creates a deep copy of the task.
func (t *Task) Clone() *Task {
	clone := *t
	if t.RepeatDays != nil {
		clone.RepeatDays = make([]int, len(t.RepeatDays))
		copy(clone.RepeatDays, t.RepeatDays)
	}
	return &clone
}

// Item returns the task as a streak aggregator input.
func (t *Task) Item() streak.Item {
	return streak.Item{ID: t.ID, Rule: t.Rule}
}

// Items converts tasks into streak aggregator inputs.
func Items(tasks []*Task) []streak.Item {
	items := make([]streak.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, t.Item())
	}
	return items
}

// Repository is the task store used by the planner.
type Repository interface {
	// Create stores a new task and returns its ID.
	Create(ctx context.Context, task Task) (string, error)

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, taskID string) (*Task, error)

	// Update replaces a task's editable fields. CreatedAt is preserved.
	Update(ctx context.Context, task Task) error

	// Delete removes a task and its completion records.
	Delete(ctx context.Context, taskID string) error

	// List returns every task ordered by creation time.
	List(ctx context.Context) ([]*Task, error)

	// DueOn returns the tasks due on day.
	DueOn(ctx context.Context, day localdate.Day) ([]*Task, error)

	// MarkDone records the task as completed on day.
	// Returns ErrNotDue if the task is not due that day.
	MarkDone(ctx context.Context, taskID string, day localdate.Day) error

	// Unmark removes a completion record. Missing records are not an error.
	Unmark(ctx context.Context, taskID string, day localdate.Day) error

	// Completions returns the completion records within [from, to].
	Completions(ctx context.Context, from, to localdate.Day) (streak.Completions, error)

	// Search returns tasks whose title or notes match query, best first.
	Search(ctx context.Context, query string, limit int) ([]*Task, error)

	// Close releases resources held by the repository.
	Close() error
}
