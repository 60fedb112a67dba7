package settings

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/state"
)

// Key names a flag.
type Key string

// Known flags.
const (
	TourCompleted                Key = "tour.completed"
	OnboardingCompleted          Key = "onboarding.completed"
	StreakIntroDismissed         Key = "streak_intro.dismissed"
	NotificationsPromptDismissed Key = "notifications_prompt.dismissed"
)

const keyPrefix = "settings."

// ErrUnknownSetting is returned for names outside the schema.
var ErrUnknownSetting = errors.New(errors.ErrCodeInvalidInput, "unknown setting")

// schema holds every flag and its default.
var schema = map[Key]bool{
	TourCompleted:                false,
	OnboardingCompleted:          false,
	StreakIntroDismissed:         false,
	NotificationsPromptDismissed: false,
}

// Keys returns the known flags, sorted.
func Keys() []Key {
	keys := make([]Key, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ParseKey validates a flag name.
func ParseKey(name string) (Key, error) {
	k := Key(strings.TrimSpace(name))
	if _, ok := schema[k]; !ok {
		return "", errors.Wrap(ErrUnknownSetting, "unknown setting "+name)
	}
	return k, nil
}

type row struct {
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings reads and writes flags.
type Settings struct {
	store state.Store
	log   *logging.Logger
	now   func() time.Time
	mu    sync.Mutex
}

// Option configures Settings.
type Option func(*Settings)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Settings) { s.log = l }
}

// WithClock sets the clock used to stamp rows.
func WithClock(now func() time.Time) Option {
	return func(s *Settings) { s.now = now }
}

// New creates Settings over store.
func New(store state.Store, opts ...Option) *Settings {
	s := &Settings{store: store, log: logging.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("settings")
	return s
}

// Get returns the flag value, or its default when unset.
func (s *Settings) Get(ctx context.Context, key Key) (bool, error) {
	def, ok := schema[key]
	if !ok {
		return false, ErrUnknownSetting
	}
	if err := ctx.Err(); err != nil {
		return false, errors.Wrap(err, "get setting")
	}

	data, err := s.store.Get(keyPrefix + string(key))
	if err == state.ErrNotFound {
		return def, nil
	}
	if err != nil {
		return false, s.storeErr("get", key, err)
	}

	var r row
	if err := json.Unmarshal(data, &r); err != nil {
		s.log.SkippedRow(keyPrefix+string(key), err)
		return def, nil
	}
	return r.Value, nil
}

// Set stores the flag value.
func (s *Settings) Set(ctx context.Context, key Key, value bool) error {
	if _, ok := schema[key]; !ok {
		return ErrUnknownSetting
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "set setting")
	}

	data, err := json.Marshal(row{Value: value, UpdatedAt: s.now()})
	if err != nil {
		return errors.Wrap(err, "encode setting")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Put(keyPrefix+string(key), data); err != nil {
		return s.storeErr("put", key, err)
	}
	return nil
}

// All returns every flag with its current value.
func (s *Settings) All(ctx context.Context) (map[Key]bool, error) {
	all := make(map[Key]bool, len(schema))
	for _, k := range Keys() {
		v, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		all[k] = v
	}
	return all, nil
}

// Reset clears every stored flag so each reads as its default again.
func (s *Settings) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "reset settings")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.store.Keys(keyPrefix + "*")
	if err != nil {
		return s.storeErr("keys", "", err)
	}
	for _, k := range keys {
		if err := s.store.Delete(k); err != nil {
			return s.storeErr("delete", Key(strings.TrimPrefix(k, keyPrefix)), err)
		}
	}
	s.log.SettingsReset(len(keys))
	return nil
}

func (s *Settings) storeErr(op string, key Key, err error) error {
	s.log.StoreError(op, keyPrefix+string(key), err)
	if err == state.ErrClosed {
		return errors.WrapWithCode(err, errors.ErrCodeUnavailable, "settings store closed")
	}
	return errors.WrapWithCode(err, errors.ErrCodeUnavailable, "settings "+op)
}
