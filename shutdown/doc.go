// Package shutdown closes planner resources in order when a program exits.
//
// Resources register a close function with a phase. Lower phases close
// first and functions sharing a phase close concurrently, so the task
// manager and search index are released before the row store and its NATS
// connection underneath them.
//
//	coord := shutdown.New(shutdown.WithLogger(log))
//	coord.Register("tasks", shutdown.PhaseServices, func(context.Context) error { return repo.Close() })
//	coord.Register("store", shutdown.PhaseStore, func(context.Context) error { return closeStore() })
//	coord.HandleSignals()
//	<-coord.Done()
package shutdown
