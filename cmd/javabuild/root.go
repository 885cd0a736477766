package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/javabuild/pkg/build"
	"github.com/ritzau/javabuild/pkg/config"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/output"
)

var rootCmd = &cobra.Command{
	Use:   "javabuild",
	Short: "Incremental build planner for plain Java projects",
	Long: `javabuild compiles, runs and packages Java projects laid out as a source
directory, an output directory and a lib directory of third-party archives.
Only stale sources and the files importing them are recompiled; an empty
output directory triggers a build from scratch.

Configuration is read from config.txt, javabuild.yaml, javabuild.toml,
JAVABUILD_* environment variables and flags, later sources winning.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// sessionFunc is the body of a command that works on a session
type sessionFunc func(ctx context.Context, sess *build.Session, args []string) error

// withSession loads the configuration, sets up logging and hands a session
// to fn. When record is set, compiles are written to the build history.
func withSession(record bool, fn sessionFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg)

		sess := build.NewSession(cfg, output.NewConsole(cmd.OutOrStdout()))
		if record {
			if store := openHistory(cfg); store != nil {
				defer func() { _ = store.Close() }()
				sess.History = store
			}
		}

		err = fn(cmd.Context(), sess, args)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

func setupLogging(cfg *config.Config) {
	level := logging.LevelForVerbosity(cfg.Verbose)
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
		return
	}
	logging.SetOutput(os.Stderr, level)
}

// openHistory opens the configured history database. Build history is
// best effort: a failure is logged and compiling goes on without it.
func openHistory(cfg *config.Config) *history.Store {
	path := cfg.HistoryPath()
	if path == "" || cfg.DryRun {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logging.Warn("build history disabled", "path", path, "error", err)
		return nil
	}
	return store
}
