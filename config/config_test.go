package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/state"
	"github.com/simora-app/planner/streak"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	opts := cfg.StreakOptions()
	want := streak.DefaultOptions()
	if diff := cmp.Diff(want, opts, cmp.Comparer(func(a, b *time.Location) bool { return a == b })); diff != "" {
		t.Errorf("StreakOptions() mismatch (-want +got):\n%s", diff)
	}

	e, err := cfg.Evaluator()
	if err != nil {
		t.Fatalf("Evaluator() error = %v", err)
	}
	if e.Location != time.Local || e.Monthly != recurrence.MonthlySkip {
		t.Errorf("Evaluator() = %+v, want local zone with skip", e)
	}
}

func TestParse(t *testing.T) {
	content := `
timezone = "UTC"

[recurrence]
monthly = "clamp"

[streak]
silver_ratio = 0.6
pending_today = true
return_gap = 2

[store]
backend = "nats"
url = "nats://example:4222"
bucket = "simora"
timeout = "2s"

[log]
level = "debug"
`
	cfg, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	e, err := cfg.Evaluator()
	if err != nil {
		t.Fatalf("Evaluator() error = %v", err)
	}
	if e.Location != time.UTC || e.Monthly != recurrence.MonthlyClamp {
		t.Errorf("Evaluator() = %+v, want UTC with clamp", e)
	}

	opts := cfg.StreakOptions()
	if opts.Thresholds.SilverRatio != 0.6 || opts.Thresholds.GoldRatio != 1.0 {
		t.Errorf("thresholds = %+v, want silver 0.6 and default gold", opts.Thresholds)
	}
	if !opts.PendingToday || opts.ReturnGap != 2 {
		t.Errorf("PendingToday=%v ReturnGap=%d, want true, 2", opts.PendingToday, opts.ReturnGap)
	}

	want := StoreConfig{Backend: BackendNATS, URL: "nats://example:4222", Bucket: "simora", Path: "planner.db", Timeout: "2s"}
	if diff := cmp.Diff(want, cfg.Store); diff != "" {
		t.Errorf("Store mismatch (-want +got):\n%s", diff)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse("[streak]\ngrace_days = 2\n")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "streak.grace_days") {
		t.Errorf("error %q should name the key", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad monthly", func(c *Config) { c.Recurrence.Monthly = "roll" }, "recurrence.monthly"},
		{"inverted ratios", func(c *Config) { c.Streak.SilverRatio = 0.9; c.Streak.GoldRatio = 0.8 }, "streak ratios"},
		{"week gold over 7", func(c *Config) { c.Streak.WeekGold = 8 }, "week badges"},
		{"return gap", func(c *Config) { c.Streak.ReturnGap = 0 }, "return_gap"},
		{"bad backend", func(c *Config) { c.Store.Backend = "postgres" }, "store.backend"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.Path = "" }, "store.path"},
		{"nats without url", func(c *Config) { c.Store.Backend = BackendNATS; c.Store.URL = "" }, "store.url"},
		{"dotted bucket", func(c *Config) { c.Store.Backend = BackendNATS; c.Store.Bucket = "a.b" }, "store.bucket"},
		{"bad timeout", func(c *Config) { c.Store.Timeout = "soon" }, "store.timeout"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %s, want INVALID_INPUT", errors.Code(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("Store.Backend = %q, want default memory", cfg.Store.Backend)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStandardPaths(t *testing.T) {
	paths := StandardPaths()
	if len(paths) == 0 || paths[0] != "planner.toml" {
		t.Errorf("StandardPaths() = %v, want planner.toml first", paths)
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	if cfg.Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); !ok || lvl != logging.LevelError {
		t.Errorf("ParseLevel(%q) = %s, %v", cfg.Log.Level, lvl, ok)
	}
}

func TestOpenMemoryStore(t *testing.T) {
	s, closeFn, err := Default().OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if err := s.Put("settings.tour.completed", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close error = %v", err)
	}
	if _, err := s.Get("settings.tour.completed"); err != state.ErrClosed {
		t.Errorf("Get() after close error = %v, want ErrClosed", err)
	}
}

func TestParseYAML(t *testing.T) {
	content := []byte(`
timezone: UTC
recurrence:
  monthly: clamp
store:
  backend: sqlite
  path: /var/lib/simora/planner.db
`)
	cfg, err := ParseYAML(content)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if cfg.Recurrence.Monthly != "clamp" || cfg.Store.Backend != BackendSQLite {
		t.Errorf("ParseYAML() = %+v", cfg)
	}
	if cfg.Streak.ReturnGap != 1 {
		t.Errorf("ReturnGap = %d, want default 1", cfg.Streak.ReturnGap)
	}

	if _, err := ParseYAML([]byte("streak:\n  grace_days: 2\n")); err == nil {
		t.Error("expected error for unknown YAML key")
	}
	if cfg, err := ParseYAML(nil); err != nil || cfg.Store.Backend != BackendMemory {
		t.Errorf("ParseYAML(empty) = %v, %v; want defaults", cfg, err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestOpenSQLiteStore(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = BackendSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "planner.db")

	s, closeFn, err := cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer closeFn()

	if err := s.Put("tasks.task.a", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	keys, err := s.Keys("tasks.*")
	if err != nil || len(keys) != 1 {
		t.Errorf("Keys() = %v, %v", keys, err)
	}
}

func TestApplyLogLevel(t *testing.T) {
	var buf strings.Builder
	l := logging.New()
	l.SetOutput(&buf)

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at default level: %q", buf.String())
	}

	cfg := Default()
	cfg.Log.Level = "debug"
	cfg.ApplyLogLevel(l)
	l.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q, want debug line after ApplyLogLevel", buf.String())
	}

	cfg.Log.Level = "loud"
	cfg.ApplyLogLevel(l)
	l.Debug("still shown")
	if !strings.Contains(buf.String(), "still shown") {
		t.Errorf("unknown level changed the logger: %q", buf.String())
	}
}
