package planner

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/streak"
	"github.com/simora-app/planner/tasks"
	"github.com/simora-app/planner/telemetry"
)

// MaxUpcomingDays bounds the Upcoming horizon.
const MaxUpcomingDays = 366

// DueTask is a task due on a day together with its completion state.
type DueTask struct {
	Task *tasks.Task `json:"task"`
	Done bool        `json:"done"`
}

// Agenda is the list of tasks due on one day.
type Agenda struct {
	Day   localdate.Day `json:"day"`
	Tasks []DueTask     `json:"tasks"`
}

// Planner combines the task repository with recurrence and streak evaluation.
type Planner struct {
	repo       tasks.Repository
	eval       recurrence.Evaluator
	streakOpts streak.Options
	agg        *streak.Aggregator
	log        *logging.Logger
	tracer     *telemetry.Tracer
	now        func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithEvaluator sets the recurrence evaluator. The streak aggregator uses
// the same evaluator.
func WithEvaluator(e recurrence.Evaluator) Option {
	return func(p *Planner) { p.eval = e }
}

// WithStreakOptions sets the streak options. Their Evaluator field is
// replaced by the planner's evaluator.
func WithStreakOptions(o streak.Options) Option {
	return func(p *Planner) { p.streakOpts = o }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// WithTracer sets the tracer. Defaults to the global tracer.
func WithTracer(t *telemetry.Tracer) Option {
	return func(p *Planner) { p.tracer = t }
}

// WithClock sets the clock used by Today.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a Planner over repo.
func New(repo tasks.Repository, opts ...Option) *Planner {
	p := &Planner{
		repo:       repo,
		eval:       recurrence.Default(),
		streakOpts: streak.DefaultOptions(),
		log:        logging.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = telemetry.GetTracer()
	}
	p.log = p.log.WithComponent("planner")
	p.streakOpts.Evaluator = p.eval
	p.agg = streak.NewAggregator(p.streakOpts)
	return p
}

// Today returns the current day in the evaluator's zone.
func (p *Planner) Today() localdate.Day {
	return localdate.In(p.now(), p.eval.Location)
}

// DueTasks returns the tasks due on day, in list order, with their
// completion state.
func (p *Planner) DueTasks(ctx context.Context, day localdate.Day) (_ []DueTask, err error) {
	ctx, span := p.tracer.StartPlannerSpan(ctx, "due_tasks")
	var total, due int
	defer func() {
		p.tracer.EndPlannerSpan(span, telemetry.PlannerSpanOptions{Day: day.String(), Tasks: total, Due: due}, err)
	}()

	all, done, err := p.load(ctx, day, day)
	if err != nil {
		return nil, err
	}
	total = len(all)

	var out []DueTask
	for _, t := range all {
		if !p.eval.Due(t.Rule, day) {
			continue
		}
		out = append(out, DueTask{Task: t, Done: done.Has(t.ID, day)})
	}
	due = len(out)
	p.log.TasksEvaluated(day.String(), due, total)
	return out, nil
}

// Upcoming returns one agenda per day for the days starting at from.
// Days with nothing due are included with an empty task list.
func (p *Planner) Upcoming(ctx context.Context, from localdate.Day, days int) (_ []Agenda, err error) {
	if days <= 0 || days > MaxUpcomingDays {
		return nil, errors.InvalidInput("upcoming horizon out of range", errors.WithDay(from.String()),
			errors.WithMetadata("days", strconv.Itoa(days)))
	}

	ctx, span := p.tracer.StartPlannerSpan(ctx, "upcoming")
	to := from.AddDays(days - 1)
	var total, due int
	defer func() {
		p.tracer.EndPlannerSpan(span, telemetry.PlannerSpanOptions{Day: to.String(), From: from.String(), Tasks: total, Due: due}, err)
	}()

	all, done, err := p.load(ctx, from, to)
	if err != nil {
		return nil, err
	}
	total = len(all)

	agenda := make([]Agenda, 0, days)
	for _, d := range localdate.Range(from, to) {
		a := Agenda{Day: d, Tasks: []DueTask{}}
		for _, t := range all {
			if p.eval.Due(t.Rule, d) {
				a.Tasks = append(a.Tasks, DueTask{Task: t, Done: done.Has(t.ID, d)})
			}
		}
		due += len(a.Tasks)
		agenda = append(agenda, a)
	}
	return agenda, nil
}

// Summary computes the streak summary for since..today inclusive.
func (p *Planner) Summary(ctx context.Context, since, today localdate.Day) (_ streak.Summary, err error) {
	if since.After(today) {
		return streak.Summary{}, errors.InvalidInput("summary window starts after today",
			errors.WithDay(today.String()), errors.WithMetadata("since", since.String()))
	}

	ctx, span := p.tracer.StartPlannerSpan(ctx, "summary")
	var s streak.Summary
	var total int
	defer func() {
		p.tracer.EndPlannerSpan(span, telemetry.PlannerSpanOptions{
			Day:     today.String(),
			From:    since.String(),
			Tasks:   total,
			Current: s.Current,
			Longest: s.Longest,
		}, err)
	}()

	start := time.Now()
	all, done, err := p.load(ctx, since, today)
	if err != nil {
		return streak.Summary{}, err
	}
	total = len(all)

	s = p.agg.Compute(tasks.Items(all), done, since, today)
	p.log.StreakComputed(since.String(), today.String(), s.Current, s.Longest, time.Since(start))
	return s, nil
}

// Week computes the summary for the Sunday-start week containing today,
// up to and including today.
func (p *Planner) Week(ctx context.Context, today localdate.Day) (streak.Summary, error) {
	return p.Summary(ctx, today.StartOfWeek(), today)
}

// load fetches tasks and the completions within [from, to] concurrently.
func (p *Planner) load(ctx context.Context, from, to localdate.Day) ([]*tasks.Task, streak.Completions, error) {
	var (
		all  []*tasks.Task
		done streak.Completions
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = p.repo.List(gctx)
		if err != nil {
			return errors.Wrap(err, "load tasks")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		done, err = p.repo.Completions(gctx, from, to)
		if err != nil {
			return errors.Wrap(err, "load completions")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.log.Error("load_failed", map[string]interface{}{
			"from":  from.String(),
			"to":    to.String(),
			"error": err.Error(),
		})
		return nil, nil, err
	}
	return all, done, nil
}
