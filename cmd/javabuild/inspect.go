package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/javabuild/pkg/build"
	"github.com/ritzau/javabuild/pkg/history"
)

var (
	planJSON     bool
	historyJSON  bool
	historyLimit int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what compile would do without running anything",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		cmd, plan, err := sess.CompileCommand(ctx, false)
		if err != nil {
			return err
		}
		if planJSON {
			return printJSON(plan)
		}
		sess.Console.PlanReport(plan)
		if cmd.Runnable() {
			sess.Console.Command(cmd)
		}
		return nil
	}),
}

var commandCmd = &cobra.Command{
	Use:       "command <kind>",
	Short:     "Print the command of a kind: compile, scratch, run, jar or extract",
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		cmds, err := sess.CommandFor(ctx, build.Kind(args[0]))
		if err != nil {
			return err
		}
		for _, c := range cmds {
			if c.Runnable() {
				fmt.Println(c)
			}
		}
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent compiles",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		path := sess.Config.HistoryPath()
		if path == "" {
			return fmt.Errorf("build history is disabled")
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		entries, err := store.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(entries)
		}
		sess.Console.History(entries)
		return nil
	}),
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print entries as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries (0 for all)")
	rootCmd.AddCommand(planCmd, commandCmd, historyCmd)
}

func kindNames() []string {
	names := make([]string, len(build.Kinds))
	for i, k := range build.Kinds {
		names[i] = string(k)
	}
	return names
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
