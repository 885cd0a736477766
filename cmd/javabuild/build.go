package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ritzau/javabuild/pkg/build"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile stale sources and the files importing them",
	Args:  cobra.NoArgs,
	RunE: withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Compile(ctx, false)
	}),
}

var scratchCmd = &cobra.Command{
	Use:   "scratch",
	Short: "Compile every source directory regardless of the output directory",
	Args:  cobra.NoArgs,
	RunE: withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Compile(ctx, true)
	}),
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile, then launch the main class",
	Args:  cobra.NoArgs,
	RunE: withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Run(ctx)
	}),
}

var jarCmd = &cobra.Command{
	Use:   "jar",
	Short: "Package the compiled classes into <project>.jar",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Jar(ctx)
	}),
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Remove the output directory, compile from scratch and package",
	Args:  cobra.NoArgs,
	RunE: withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Build(ctx)
	}),
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Unpack library archives for bundling (include policy only)",
	Args:  cobra.NoArgs,
	RunE: withSession(false, func(ctx context.Context, sess *build.Session, args []string) error {
		return sess.Extract(ctx)
	}),
}

func init() {
	rootCmd.AddCommand(compileCmd, scratchCmd, runCmd, jarCmd, buildCmd, extractCmd)
}
