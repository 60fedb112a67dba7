// Package state provides the key-value row store behind the planner.
//
// Every planner row (tasks, completion records, settings) is a JSON value
// under a dotted key such as "tasks.task.<id>". Three backends implement
// Store:
//
//   - MemoryStore keeps rows in process memory, for tests and previews.
//   - SQLiteStore keeps rows in one SQLite table on the device.
//   - NATSStore keeps rows in a NATS JetStream KV bucket shared by
//     several processes.
//
// Keys are limited to letters, digits, '.', '-', '_' and '=' so that they
// are valid NATS KV keys. Keys(pattern) accepts an exact key or a prefix
// followed by '*'.
//
// # Basic Usage
//
//	store := state.NewMemoryStore()
//	defer store.Close()
//
//	store.Put("settings.tour.completed", []byte(`{"value":true}`))
//	keys, _ := store.Keys("settings.*")
//
// # Thread Safety
//
// All implementations are safe for concurrent use.
package state
