// Command planner manages recurring tasks and shows the daily agenda and
// streak from the command line.
//
//	planner add "Water the plants" --repeat daily
//	planner today
//	planner done <task-id>
//	planner streak --days 28
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simora-app/planner/config"
	"github.com/simora-app/planner/errors"
	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/logging"
	"github.com/simora-app/planner/planner"
	"github.com/simora-app/planner/settings"
	"github.com/simora-app/planner/shutdown"
	"github.com/simora-app/planner/tasks"
)

var (
	configPath string
	jsonOutput bool
	verbose    bool

	app *application
)

// application holds the services opened for one command run.
type application struct {
	cfg      *config.Config
	log      *logging.Logger
	repo     *tasks.Manager
	planner  *planner.Planner
	settings *settings.Settings
	coord    *shutdown.Coordinator
}

var rootCmd = &cobra.Command{
	Use:           "planner",
	Short:         "Recurring tasks, daily agenda and streaks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApplication()
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.coord.ShutdownWithTimeout(shutdown.DefaultTimeout)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: planner.toml or planner.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// exitTempFail tells scripts the command may succeed if retried.
const exitTempFail = 75

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err, jsonOutput)
		if app != nil {
			app.coord.ShutdownWithTimeout(shutdown.DefaultTimeout)
		}
		os.Exit(exitCode(err))
	}
}

// reportError writes err as text, or as {"error": {...}} with --json.
func reportError(w io.Writer, err error, asJSON bool) {
	if !asJSON {
		fmt.Fprintln(w, "error:", err)
		return
	}
	var perr *errors.Error
	if !stderrors.As(err, &perr) {
		perr = errors.Internal(err.Error())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(struct {
		Error *errors.Error `json:"error"`
	}{perr})
}

func exitCode(err error) int {
	if errors.IsRetryable(err) {
		return exitTempFail
	}
	return 1
}

func openApplication() (*application, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	log := cfg.Logger()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logging.LevelDebug)
	}

	eval, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	repo, err := tasks.NewManager(store, tasks.WithEvaluator(eval), tasks.WithLogger(log))
	if err != nil {
		closeStore()
		return nil, err
	}

	coord := shutdown.New(shutdown.WithLogger(log))
	coord.Register("tasks", shutdown.PhaseServices, func(context.Context) error { return repo.Close() })
	coord.Register("store", shutdown.PhaseStore, func(context.Context) error { return closeStore() })
	coord.HandleSignals()

	return &application{
		cfg:  cfg,
		log:  log,
		repo: repo,
		planner: planner.New(repo,
			planner.WithEvaluator(eval),
			planner.WithStreakOptions(cfg.StreakOptions()),
			planner.WithLogger(log),
		),
		settings: settings.New(store, settings.WithLogger(log)),
		coord:    coord,
	}, nil
}

// dayArg parses an optional YYYY-MM-DD value, defaulting to today.
func dayArg(s string) (localdate.Day, error) {
	if s == "" {
		return app.planner.Today(), nil
	}
	return localdate.Parse(s)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
