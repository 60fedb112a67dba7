package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/state"
	"github.com/simora-app/planner/streak"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNATS   = "nats"
)

// Config is the planner configuration.
type Config struct {
	// Timezone is an IANA zone name. Empty or "Local" means the process zone.
	Timezone string `toml:"timezone" yaml:"timezone"`

	Recurrence RecurrenceConfig `toml:"recurrence" yaml:"recurrence"`
	Streak     StreakConfig     `toml:"streak" yaml:"streak"`
	Store      StoreConfig      `toml:"store" yaml:"store"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

// RecurrenceConfig configures rule evaluation.
type RecurrenceConfig struct {
	// Monthly is "skip" or "clamp".
	Monthly string `toml:"monthly" yaml:"monthly"`
}

// StreakConfig configures the presence grid.
type StreakConfig struct {
	SilverRatio  float64 `toml:"silver_ratio" yaml:"silver_ratio"`
	GoldRatio    float64 `toml:"gold_ratio" yaml:"gold_ratio"`
	WeekBronze   int     `toml:"week_bronze" yaml:"week_bronze"`
	WeekSilver   int     `toml:"week_silver" yaml:"week_silver"`
	WeekGold     int     `toml:"week_gold" yaml:"week_gold"`
	PendingToday bool    `toml:"pending_today" yaml:"pending_today"`
	ReturnGap    int     `toml:"return_gap" yaml:"return_gap"`
}

// StoreConfig selects the row store.
type StoreConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
	URL     string `toml:"url" yaml:"url"`
	Bucket  string `toml:"bucket" yaml:"bucket"`

	// Path is the SQLite database file.
	Path string `toml:"path" yaml:"path"`

	// Timeout bounds each store call, e.g. "5s".
	Timeout string `toml:"timeout" yaml:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	th := streak.DefaultThresholds()
	return &Config{
		Timezone:   "Local",
		Recurrence: RecurrenceConfig{Monthly: recurrence.MonthlySkip.String()},
		Streak: StreakConfig{
			SilverRatio: th.SilverRatio,
			GoldRatio:   th.GoldRatio,
			WeekBronze:  th.WeekBronze,
			WeekSilver:  th.WeekSilver,
			WeekGold:    th.WeekGold,
			ReturnGap:   1,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
			URL:     nats.DefaultURL,
			Bucket:  state.DefaultNATSStoreConfig().Bucket,
			Path:    "planner.db",
			Timeout: "5s",
		},
		Log: LogConfig{Level: string(logging.LevelInfo)},
	}
}

// StandardPaths returns the config file locations in order of priority.
func StandardPaths() []string {
	paths := []string{"planner.toml", "planner.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "simora", "planner.toml"),
			filepath.Join(dir, "simora", "planner.yaml"),
		)
	}
	return paths
}

// Load reads the first config file found in StandardPaths. When none
// exists, the defaults are returned with an empty path.
func Load() (*Config, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return cfg, path, nil
		}
	}
	return Default(), "", nil
}

// LoadFile reads and validates a config file. Files ending in .yaml or
// .yml are decoded as YAML, everything else as TOML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config "+path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(string(data))
	}
}

// ParseYAML decodes YAML content over the defaults and validates the
// result. Unknown keys are rejected.
func ParseYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML content over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(content string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(content, cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, errors.InvalidInput("unknown config keys: " + strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, ok := recurrence.ParseMonthlyPolicy(c.Recurrence.Monthly); !ok {
		problems = append(problems, fmt.Sprintf("recurrence.monthly %q must be skip or clamp", c.Recurrence.Monthly))
	}

	s := c.Streak
	if s.SilverRatio <= 0 || s.SilverRatio > s.GoldRatio || s.GoldRatio > 1 {
		problems = append(problems, "streak ratios must satisfy 0 < silver_ratio <= gold_ratio <= 1")
	}
	if s.WeekBronze < 1 || s.WeekBronze > s.WeekSilver || s.WeekSilver > s.WeekGold || s.WeekGold > 7 {
		problems = append(problems, "week badges must satisfy 1 <= week_bronze <= week_silver <= week_gold <= 7")
	}
	if s.ReturnGap < 1 {
		problems = append(problems, "streak.return_gap must be at least 1")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite backend")
		}
	case BackendNATS:
		if c.Store.URL == "" {
			problems = append(problems, "store.url is required for the nats backend")
		}
		if err := state.ValidateKey(c.Store.Bucket); err != nil || strings.Contains(c.Store.Bucket, ".") {
			problems = append(problems, fmt.Sprintf("store.bucket %q is not a valid bucket name", c.Store.Bucket))
		}
	default:
		problems = append(problems, fmt.Sprintf("store.backend %q must be memory, sqlite or nats", c.Store.Backend))
	}
	if _, err := c.storeTimeout(); err != nil {
		problems = append(problems, err.Error())
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		problems = append(problems, fmt.Sprintf("log.level %q is not a known level", c.Log.Level))
	}

	if len(problems) > 0 {
		return errors.InvalidInput("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Evaluator builds the recurrence evaluator.
func (c *Config) Evaluator() (recurrence.Evaluator, error) {
	loc, err := c.Location()
	if err != nil {
		return recurrence.Evaluator{}, errors.InvalidInput(err.Error())
	}
	policy, ok := recurrence.ParseMonthlyPolicy(c.Recurrence.Monthly)
	if !ok {
		return recurrence.Evaluator{}, errors.InvalidInput("unknown monthly policy " + c.Recurrence.Monthly)
	}
	return recurrence.Evaluator{Location: loc, Monthly: policy}, nil
}

// StreakOptions builds the aggregator options. The evaluator is left for
// the caller to set.
func (c *Config) StreakOptions() streak.Options {
	return streak.Options{
		Thresholds: streak.Thresholds{
			SilverRatio: c.Streak.SilverRatio,
			GoldRatio:   c.Streak.GoldRatio,
			WeekBronze:  c.Streak.WeekBronze,
			WeekSilver:  c.Streak.WeekSilver,
			WeekGold:    c.Streak.WeekGold,
		},
		PendingToday: c.Streak.PendingToday,
		ReturnGap:    c.Streak.ReturnGap,
	}
}

// Logger builds a logger at the configured level.
func (c *Config) Logger() *logging.Logger {
	l := logging.New()
	c.ApplyLogLevel(l)
	return l
}

// ApplyLogLevel sets l to the configured level. Unknown levels leave l
// unchanged.
func (c *Config) ApplyLogLevel(l *logging.Logger) {
	if level, ok := logging.ParseLevel(c.Log.Level); ok {
		l.SetLevel(level)
	}
}

// OpenStore opens the configured row store. For the nats backend the
// returned close function also drains the connection.
func (c *Config) OpenStore() (state.Store, func() error, error) {
	switch c.Store.Backend {
	case BackendMemory, "":
		s := state.NewMemoryStore()
		return s, s.Close, nil
	case BackendSQLite:
		s, err := state.NewSQLiteStore(c.Store.Path)
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "open sqlite store")
		}
		return s, s.Close, nil
	case BackendNATS:
		timeout, err := c.storeTimeout()
		if err != nil {
			return nil, nil, errors.InvalidInput(err.Error())
		}
		nc, err := nats.Connect(c.Store.URL, nats.Name("simora-planner"), nats.Timeout(timeout))
		if err != nil {
			return nil, nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "connect to nats")
		}
		s, err := state.NewNATSStore(state.NATSStoreConfig{
			Conn:    nc,
			Bucket:  c.Store.Bucket,
			Timeout: timeout,
		})
		if err != nil {
			nc.Close()
			return nil, nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "open nats store")
		}
		closeFn := func() error {
			err := s.Close()
			if derr := nc.Drain(); derr != nil && err == nil {
				err = derr
			}
			return err
		}
		return s, closeFn, nil
	default:
		return nil, nil, errors.InvalidInput("unknown store backend " + c.Store.Backend)
	}
}

func (c *Config) storeTimeout() (time.Duration, error) {
	if c.Store.Timeout == "" {
		return state.DefaultNATSStoreConfig().Timeout, nil
	}
	d, err := time.ParseDuration(c.Store.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("store.timeout %q is not a positive duration", c.Store.Timeout)
	}
	return d, nil
}
