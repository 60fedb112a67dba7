// Package config loads planner settings from a TOML file.
//
// Example planner.toml:
//
//	timezone = "Europe/Berlin"
//
//	[recurrence]
//	monthly = "clamp"
//
//	[streak]
//	silver_ratio = 0.5
//	gold_ratio = 1.0
//	week_bronze = 3
//	week_silver = 5
//	week_gold = 7
//	pending_today = true
//	return_gap = 2
//
//	[store]
//	backend = "nats"
//	url = "nats://127.0.0.1:4222"
//	bucket = "planner"
//
//	[log]
//	level = "debug"
//
// Missing keys keep the values from Default and unknown keys are an error.
// The same layout can be written as YAML in a .yaml or .yml file. The store
// backend is one of "memory", "sqlite" (with path) or "nats" (with url and
// bucket).
//
// A Watcher reloads the file when it changes so that a long-running
// process can pick up new streak thresholds without a restart.
package config
