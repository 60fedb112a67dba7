package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/simora-app/planner/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change onboarding flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := app.settings.All(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(all)
		}
		for _, k := range settings.Keys() {
			fmt.Printf("%-32s %v\n", k, all[k])
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <true|false>",
	Short: "Set a flag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := settings.ParseKey(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: want true or false", args[1])
		}
		return app.settings.Set(context.Background(), key, value)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.settings.Reset(context.Background())
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
