package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ritzau/javabuild/pkg/build"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a project: main class, .gitignore, manifest and config.txt",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Init(ctx)
	}),
}

var addCmd = &cobra.Command{
	Use:   "add <path|git-url>...",
	Short: "Copy archives or directories into the lib directory, or clone git repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		for _, path := range args {
			if err := sess.AddDependency(ctx, path); err != nil {
				return err
			}
		}
		return nil
	}),
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write the jar manifest",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		path, err := sess.Manifest(ctx)
		if err != nil {
			return err
		}
		sess.Console.Info("wrote %s", path)
		return nil
	}),
}

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Write a standalone build script for the target platform",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		_, err := sess.Script(ctx)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(initCmd, addCmd, manifestCmd, scriptCmd)
}
