package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simora-app/planner/streak"
)

var (
	viewDay      string
	upcomingDays int
	streakDays   int
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the tasks due today",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayArg(viewDay)
		if err != nil {
			return err
		}
		due, err := app.planner.DueTasks(context.Background(), day)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(due)
		}
		fmt.Printf("%s (%s)\n", day, weekdayNames[day.Weekday()])
		for _, d := range due {
			mark := " "
			if d.Done {
				mark = "x"
			}
			fmt.Printf("  [%s] %-30s %s\n", mark, d.Task.Title, describeRule(d.Task.Rule))
		}
		return nil
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show the agenda for the coming days",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := dayArg(viewDay)
		if err != nil {
			return err
		}
		agenda, err := app.planner.Upcoming(context.Background(), from, upcomingDays)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(agenda)
		}
		for _, a := range agenda {
			titles := make([]string, 0, len(a.Tasks))
			for _, d := range a.Tasks {
				titles = append(titles, d.Task.Title)
			}
			fmt.Printf("%s %s  %s\n", a.Day, weekdayNames[a.Day.Weekday()], strings.Join(titles, ", "))
		}
		return nil
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the streak and presence grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := dayArg(viewDay)
		if err != nil {
			return err
		}
		if streakDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		s, err := app.planner.Summary(context.Background(), today.AddDays(1-streakDays), today)
		if err != nil {
			return err
		}
		return printSummary(s)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show this week's presence and badge",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := dayArg(viewDay)
		if err != nil {
			return err
		}
		s, err := app.planner.Week(context.Background(), today)
		if err != nil {
			return err
		}
		return printSummary(s)
	},
}

func init() {
	for _, c := range []*cobra.Command{todayCmd, upcomingCmd, streakCmd, weekCmd} {
		c.Flags().StringVar(&viewDay, "day", "", "Day YYYY-MM-DD (default: today)")
	}
	upcomingCmd.Flags().IntVarP(&upcomingDays, "days", "n", 7, "Number of days")
	streakCmd.Flags().IntVarP(&streakDays, "days", "n", 28, "Window length in days")

	rootCmd.AddCommand(todayCmd, upcomingCmd, streakCmd, weekCmd)
}

var tierGlyph = map[streak.Tier]string{
	streak.TierNone:   ".",
	streak.TierBronze: "b",
	streak.TierSilver: "s",
	streak.TierGold:   "G",
}

func printSummary(s streak.Summary) error {
	if jsonOutput {
		return printJSON(s)
	}
	fmt.Printf("current %d  longest %d  returns %d  active %d/%d\n",
		s.Current, s.Longest, s.Returns, s.ActiveDays, len(s.Days))

	byWeek := make(map[string][]string)
	for _, p := range s.Days {
		start := p.Day.StartOfWeek().String()
		byWeek[start] = append(byWeek[start], tierGlyph[p.Tier])
	}
	for _, w := range s.Weeks {
		cells := byWeek[w.Start.String()]
		// Pad a partial first week so columns line up by weekday.
		if len(s.Days) > 0 && w.Start.Before(s.From) {
			pad := s.From.Sub(w.Start)
			cells = append(make([]string, pad), cells...)
			for i := 0; i < pad; i++ {
				cells[i] = " "
			}
		}
		fmt.Printf("  %s  %-13s  %s\n", w.Start, strings.Join(cells, " "), w.Badge)
	}
	return nil
}
