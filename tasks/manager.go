package tasks

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/state"
	"github.com/simora-app/planner/streak"
	"github.com/simora-app/planner/telemetry"
)

const (
	// Key prefixes for the state store.
	taskPrefix = "tasks.task."
	donePrefix = "tasks.done."
)

// completionRow is the stored form of a completion record.
type completionRow struct {
	TaskID     string        `json:"task_id"`
	Day        localdate.Day `json:"day"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Manager implements Repository using a state store backend.
type Manager struct {
	store  state.Store
	index  *searchIndex
	eval   recurrence.Evaluator
	log    *logging.Logger
	mu     sync.RWMutex
	closed atomic.Bool
	idGen  func() string
	now    func() time.Time
}

var _ Repository = (*Manager)(nil)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithIDGenerator sets a custom ID generator function.
func WithIDGenerator(gen func() string) ManagerOption {
	return func(m *Manager) {
		m.idGen = gen
	}
}

// WithClock sets the clock used for CreatedAt, UpdatedAt and RecordedAt.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// WithEvaluator sets the recurrence evaluator used by DueOn and MarkDone.
func WithEvaluator(e recurrence.Evaluator) ManagerOption {
	return func(m *Manager) {
		m.eval = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates a task manager backed by the given store and indexes
// the tasks already present in it.
func NewManager(store state.Store, opts ...ManagerOption) (*Manager, error) {
	idx, err := newSearchIndex()
	if err != nil {
		return nil, err
	}
	m := &Manager{
		store: store,
		index: idx,
		eval:  recurrence.Default(),
		log:   logging.Discard(),
		idGen: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("tasks")

	if err := m.Reindex(context.Background()); err != nil {
		idx.close()
		return nil, err
	}
	return m, nil
}

// Create stores a new task. CreatedAt and UpdatedAt are set from the clock.
func (m *Manager) Create(ctx context.Context, task Task) (string, error) {
	if m.closed.Load() {
		return "", ErrStoreClosed
	}
	if err := validate(&task); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		task.ID = m.idGen()
	} else if _, err := m.loadTask(task.ID); err == nil {
		return "", ErrTaskExists
	}

	now := m.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := m.saveTask(&task); err != nil {
		return "", err
	}
	if err := m.index.put(&task); err != nil {
		m.log.Warn("index_failed", map[string]interface{}{"task": task.ID, "error": err.Error()})
	}
	m.log.TaskSaved(task.ID, string(task.RepeatPattern), true)
	return task.ID, nil
}

// Get retrieves a task by ID.
func (m *Manager) Get(ctx context.Context, taskID string) (*Task, error) {
	if m.closed.Load() {
		return nil, ErrStoreClosed
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.loadTask(taskID)
}

// Update replaces the editable fields of an existing task.
func (m *Manager) Update(ctx context.Context, task Task) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}
	if err := validate(&task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.loadTask(task.ID)
	if err != nil {
		return err
	}

	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = m.now()

	if err := m.saveTask(&task); err != nil {
		return err
	}
	if err := m.index.put(&task); err != nil {
		m.log.Warn("index_failed", map[string]interface{}{"task": task.ID, "error": err.Error()})
	}
	m.log.TaskSaved(task.ID, string(task.RepeatPattern), false)
	return nil
}

// Delete removes a task and its completion records.
func (m *Manager) Delete(ctx context.Context, taskID string) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.loadTask(taskID); err != nil {
		return err
	}

	keys, err := m.store.Keys(donePrefix + taskID + ".*")
	if err != nil {
		return m.storeErr("keys", donePrefix+taskID, err)
	}
	for _, key := range keys {
		// The prefix also matches tasks whose ID extends this one.
		if id, _, ok := parseCompletionKey(key); !ok || id != taskID {
			continue
		}
		if err := m.store.Delete(key); err != nil {
			return m.storeErr("delete", key, err)
		}
	}

	if err := m.store.Delete(taskPrefix + taskID); err != nil {
		return m.storeErr("delete", taskPrefix+taskID, err)
	}
	if err := m.index.remove(taskID); err != nil {
		m.log.Warn("index_failed", map[string]interface{}{"task": taskID, "error": err.Error()})
	}
	return nil
}

// List returns every task ordered by creation time, then ID. Rows that
// cannot be decoded are skipped and logged.
func (m *Manager) List(ctx context.Context) ([]*Task, error) {
	if m.closed.Load() {
		return nil, ErrStoreClosed
	}

	ctx, span := telemetry.GetTracer().StartStoreSpan(ctx, "list", taskPrefix)

	m.mu.RLock()
	all, err := m.listTasks(ctx)
	m.mu.RUnlock()

	telemetry.GetTracer().EndStoreSpan(span, len(all), err)
	return all, err
}

// DueOn returns the tasks due on day.
func (m *Manager) DueOn(ctx context.Context, day localdate.Day) ([]*Task, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	var due []*Task
	for _, t := range all {
		if m.eval.Due(t.Rule, day) {
			due = append(due, t)
		}
	}
	m.log.TasksEvaluated(day.String(), len(due), len(all))
	return due, nil
}

// MarkDone records the task as completed on day. Marking an already
// completed day again is a no-op.
func (m *Manager) MarkDone(ctx context.Context, taskID string, day localdate.Day) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, err := m.loadTask(taskID)
	if err != nil {
		return err
	}
	if !m.eval.Due(task.Rule, day) {
		return errors.Wrap(ErrNotDue, "mark done", errors.WithTaskID(taskID), errors.WithDay(day.String()))
	}

	key := completionKey(taskID, day)
	_, err = m.store.Get(key)
	if err == nil {
		return nil
	}
	if err != state.ErrNotFound {
		return m.storeErr("get", key, err)
	}

	data, err := json.Marshal(completionRow{TaskID: taskID, Day: day, RecordedAt: m.now()})
	if err != nil {
		return errors.Wrap(err, "encode completion")
	}
	if err := m.store.Put(key, data); err != nil {
		return m.storeErr("put", key, err)
	}
	m.log.CompletionRecorded(taskID, day.String(), true)
	return nil
}

// Unmark removes a completion record.
func (m *Manager) Unmark(ctx context.Context, taskID string, day localdate.Day) error {
	if m.closed.Load() {
		return ErrStoreClosed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := completionKey(taskID, day)
	if err := m.store.Delete(key); err != nil {
		return m.storeErr("delete", key, err)
	}
	m.log.CompletionRecorded(taskID, day.String(), false)
	return nil
}

// Completions returns the completion records within [from, to].
func (m *Manager) Completions(ctx context.Context, from, to localdate.Day) (streak.Completions, error) {
	if m.closed.Load() {
		return nil, ErrStoreClosed
	}

	ctx, span := telemetry.GetTracer().StartStoreSpan(ctx, "completions", donePrefix)

	m.mu.RLock()
	done, err := m.completions(ctx, from, to)
	m.mu.RUnlock()

	telemetry.GetTracer().EndStoreSpan(span, len(done), err)
	return done, err
}

func (m *Manager) completions(ctx context.Context, from, to localdate.Day) (streak.Completions, error) {
	keys, err := m.store.Keys(donePrefix + "*")
	if err != nil {
		return nil, m.storeErr("keys", donePrefix, err)
	}

	done := streak.NewCompletions()
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "list completions")
		}
		taskID, day, ok := parseCompletionKey(key)
		if !ok {
			m.log.SkippedRow(key, errors.New(errors.ErrCodeCorruption, "malformed completion key"))
			continue
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		done.Add(taskID, day)
	}
	return done, nil
}

// Search returns tasks whose title or notes match query, best first.
// A limit of zero or less means 20.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]*Task, error) {
	if m.closed.Load() {
		return nil, ErrStoreClosed
	}
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids, err := m.index.search(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "search tasks")
	}

	found := make([]*Task, 0, len(ids))
	for _, id := range ids {
		t, err := m.loadTask(id)
		if err != nil {
			continue
		}
		found = append(found, t)
	}
	return found, nil
}

// Reindex rebuilds the search index from the store. Use it after other
// writers have changed the shared store.
func (m *Manager) Reindex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.listTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range all {
		if err := m.index.put(t); err != nil {
			return errors.Wrap(err, "reindex tasks")
		}
	}
	return nil
}

// Close releases resources held by the manager. The store belongs to the caller.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.index.close()
}

// Internal methods

func validate(t *Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return errors.Wrap(ErrInvalidTask, "title is required")
	}
	if t.RepeatPattern == "" {
		t.RepeatPattern = recurrence.PatternNone
	}
	if err := t.Rule.Validate(); err != nil {
		return errors.Wrap(err, "invalid task rule", errors.WithTaskID(t.ID))
	}
	return nil
}

func (m *Manager) listTasks(ctx context.Context) ([]*Task, error) {
	keys, err := m.store.Keys(taskPrefix + "*")
	if err != nil {
		return nil, m.storeErr("keys", taskPrefix, err)
	}

	var all []*Task
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "list tasks")
		}
		t, err := m.loadTask(strings.TrimPrefix(key, taskPrefix))
		if err != nil {
			m.log.SkippedRow(key, err)
			continue
		}
		all = append(all, t)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (m *Manager) loadTask(taskID string) (*Task, error) {
	if taskID == "" {
		return nil, ErrTaskNotFound
	}
	data, err := m.store.Get(taskPrefix + taskID)
	if err != nil {
		if err == state.ErrNotFound || err == state.ErrInvalidKey {
			return nil, ErrTaskNotFound
		}
		return nil, m.storeErr("get", taskPrefix+taskID, err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeCorruption, "decode task", errors.WithTaskID(taskID))
	}
	return &task, nil
}

func (m *Manager) saveTask(task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return errors.Wrap(err, "encode task", errors.WithTaskID(task.ID))
	}
	if err := m.store.Put(taskPrefix+task.ID, data); err != nil {
		return m.storeErr("put", taskPrefix+task.ID, err)
	}
	return nil
}

func (m *Manager) storeErr(op, key string, err error) error {
	if err == state.ErrClosed {
		return ErrStoreClosed
	}
	if err == state.ErrInvalidKey {
		return errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "invalid key "+key)
	}
	m.log.StoreError(op, key, err)
	return errors.WrapWithCode(err, errors.ErrCodeUnavailable, "store "+op)
}

func completionKey(taskID string, day localdate.Day) string {
	return donePrefix + taskID + "." + day.String()
}

// parseCompletionKey splits tasks.done.<id>.<YYYY-MM-DD>.
func parseCompletionKey(key string) (string, localdate.Day, bool) {
	rest := strings.TrimPrefix(key, donePrefix)
	i := strings.LastIndex(rest, ".")
	if i <= 0 {
		return "", localdate.Day{}, false
	}
	day, err := localdate.Parse(rest[i+1:])
	if err != nil {
		return "", localdate.Day{}, false
	}
	return rest[:i], day, true
}
