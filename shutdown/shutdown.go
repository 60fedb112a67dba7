package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/logging"
)

// Phases used by the planner programs.
const (
	PhaseServices = 10
	PhaseStore    = 20
)

// DefaultTimeout bounds a shutdown started by a signal.
const DefaultTimeout = 10 * time.Second

// ErrAlreadyShutdown is returned by Register after shutdown has begun.
var ErrAlreadyShutdown = errors.New(errors.ErrCodeCanceled, "shutdown already initiated")

// Func releases one resource.
type Func func(ctx context.Context) error

// Result records how one close function finished.
type Result struct {
	Name     string
	Phase    int
	Duration time.Duration
	Err      error
}

type step struct {
	name  string
	phase int
	fn    Func
}

// Coordinator runs registered close functions once, phase by phase.
type Coordinator struct {
	log     *logging.Logger
	timeout time.Duration

	mu      sync.Mutex
	steps   []step
	started bool
	results []Result
	err     error

	once sync.Once
	done chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithTimeout sets the timeout used by HandleSignals.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// New creates a Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		log:     logging.Discard(),
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("shutdown")
	return c
}

// Register adds a close function.
func (c *Coordinator) Register(name string, phase int, fn Func) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyShutdown
	}
	c.steps = append(c.steps, step{name: name, phase: phase, fn: fn})
	return nil
}

// Shutdown runs every close function. Later calls wait for the first one
// and return its error. A phase still runs after an earlier phase failed.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		c.started = true
		steps := make([]step, len(c.steps))
		copy(steps, c.steps)
		c.mu.Unlock()

		results, err := c.run(ctx, steps)

		c.mu.Lock()
		c.results = results
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
	<-c.done
	return c.Err()
}

// ShutdownWithTimeout runs Shutdown bounded by timeout.
func (c *Coordinator) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Shutdown(ctx)
}

// HandleSignals starts shutdown on SIGINT or SIGTERM.
func (c *Coordinator) HandleSignals() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case sig := <-sigs:
			c.log.Info("signal_received", map[string]interface{}{"signal": sig.String()})
			_ = c.ShutdownWithTimeout(c.timeout)
		case <-c.done:
		}
		signal.Stop(sigs)
	}()
}

// Done is closed when shutdown has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the shutdown error, or nil before shutdown has finished.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Results returns one entry per close function in execution order.
func (c *Coordinator) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Coordinator) run(ctx context.Context, steps []step) ([]Result, error) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].phase < steps[j].phase })

	var results []Result
	var errs []error
	for start := 0; start < len(steps); {
		end := start
		for end < len(steps) && steps[end].phase == steps[start].phase {
			end++
		}

		if err := ctx.Err(); err != nil {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("shutdown phase %d not started", steps[start].phase)))
			break
		}

		phase := c.runPhase(ctx, steps[start:end])
		for _, r := range phase {
			if r.Err != nil {
				errs = append(errs, errors.Wrap(r.Err, "close "+r.Name))
			}
		}
		results = append(results, phase...)
		start = end
	}
	return results, errors.Join(errs...)
}

func (c *Coordinator) runPhase(ctx context.Context, steps []step) []Result {
	results := make([]Result, len(steps))
	var g errgroup.Group
	for i, s := range steps {
		i, s := i, s
		g.Go(func() error {
			begin := time.Now()
			err := s.fn(ctx)
			results[i] = Result{Name: s.name, Phase: s.phase, Duration: time.Since(begin), Err: err}

			fields := map[string]interface{}{
				"name":        s.name,
				"phase":       s.phase,
				"duration_ms": time.Since(begin).Milliseconds(),
			}
			if err != nil {
				fields["error"] = err.Error()
				c.log.Error("close_failed", fields)
			} else {
				c.log.Debug("closed", fields)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
