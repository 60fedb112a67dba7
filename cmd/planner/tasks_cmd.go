package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simora-app/planner/localdate"
	"github.com/simora-app/planner/recurrence"
	"github.com/simora-app/planner/tasks"
)

var (
	addNotes   string
	addRepeat  string
	addDays    string
	addDate    string
	addUntil   string
	doneDay    string
	searchSize int
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task with an optional recurrence.

Patterns: none, daily, weekly, weekend, monthly, custom.
Weekdays for --days are 0 (Sunday) through 6 (Saturday), comma separated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := parseWeekdays(addDays)
		if err != nil {
			return err
		}
		task := tasks.Task{
			Title: strings.Join(args, " "),
			Notes: addNotes,
			Rule: recurrence.Rule{
				ScheduledDate: addDate,
				RepeatPattern: recurrence.ParsePattern(addRepeat),
				RepeatDays:    days,
				RepeatEndDate: addUntil,
			},
		}
		if task.RepeatPattern == recurrence.PatternNone && task.ScheduledDate == "" {
			task.ScheduledDate = app.planner.Today().String()
		}

		id, err := app.repo.Create(context.Background(), task)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]string{"id": id})
		}
		fmt.Println(id)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := app.repo.List(context.Background())
		if err != nil {
			return err
		}
		return printTasks(all)
	},
}

var removeCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task and its completion history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.repo.Delete(context.Background(), args[0])
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task done for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayArg(doneDay)
		if err != nil {
			return err
		}
		return app.repo.MarkDone(context.Background(), args[0], day)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <task-id>",
	Short: "Remove a completion for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayArg(doneDay)
		if err != nil {
			return err
		}
		return app.repo.Unmark(context.Background(), args[0], day)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task titles and notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := app.repo.Search(context.Background(), strings.Join(args, " "), searchSize)
		if err != nil {
			return err
		}
		return printTasks(found)
	},
}

func init() {
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free text notes")
	addCmd.Flags().StringVarP(&addRepeat, "repeat", "r", "none", "Repeat pattern")
	addCmd.Flags().StringVar(&addDays, "days", "", "Weekdays for weekly or custom, e.g. 1,3,5")
	addCmd.Flags().StringVar(&addDate, "date", "", "Scheduled date YYYY-MM-DD (default: today for one-off tasks)")
	addCmd.Flags().StringVar(&addUntil, "until", "", "Last day the task repeats, YYYY-MM-DD")

	doneCmd.Flags().StringVar(&doneDay, "day", "", "Day YYYY-MM-DD (default: today)")
	undoCmd.Flags().StringVar(&doneDay, "day", "", "Day YYYY-MM-DD (default: today)")
	searchCmd.Flags().IntVarP(&searchSize, "limit", "n", 10, "Maximum results")

	rootCmd.AddCommand(addCmd, listCmd, removeCmd, doneCmd, undoCmd, searchCmd)
}

func parseWeekdays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}

func printTasks(all []*tasks.Task) error {
	if jsonOutput {
		return printJSON(all)
	}
	for _, t := range all {
		fmt.Printf("%-36s  %-8s  %s\n", t.ID, t.RepeatPattern, t.Title)
	}
	return nil
}

func describeRule(r recurrence.Rule) string {
	switch r.RepeatPattern {
	case recurrence.PatternWeekly, recurrence.PatternCustom:
		names := make([]string, 0, len(r.RepeatDays))
		for _, d := range r.RepeatDays {
			names = append(names, weekdayNames[d%7])
		}
		if len(names) == 0 && r.ScheduledDate != "" {
			if d, err := localdate.Parse(r.ScheduledDate); err == nil {
				names = append(names, weekdayNames[d.Weekday()])
			}
		}
		return string(r.RepeatPattern) + " " + strings.Join(names, ",")
	case recurrence.PatternMonthly:
		return "monthly from " + r.ScheduledDate
	case recurrence.PatternNone, "":
		return "on " + r.ScheduledDate
	default:
		return string(r.RepeatPattern)
	}
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
