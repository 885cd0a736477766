package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/javabuild/pkg/build"
	"github.com/ritzau/javabuild/pkg/config"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/pubsub"
	"github.com/ritzau/javabuild/pkg/web"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Compile, then recompile whenever sources, libraries or config change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reload := func() (*config.Config, error) { return config.Load(cmd.Flags()) }
		return withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
			return sess.Watch(ctx, reload)
		})(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch and serve the inspection API, build events and metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reload := func() (*config.Config, error) { return config.Load(cmd.Flags()) }
		return withSession(true, func(ctx context.Context, sess *build.Session, args []string) error {
			return serve(ctx, sess, reload)
		})(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd, serveCmd)
}

// serve runs the watch loop and the inspection server side by side. The
// watch loop works on its own copy of the session so a config reload never
// races with API requests.
func serve(ctx context.Context, sess *build.Session, reload build.ReloadFunc) error {
	pub := pubsub.NewSSEPublisher()
	defer func() { _ = pub.Close() }()
	pub.ConfigureTopic(pubsub.TopicBuildStatus, pubsub.TopicConfig{BufferSize: 1})
	pub.ConfigureTopic(pubsub.TopicPlan, pubsub.TopicConfig{BufferSize: 1})
	pub.ConfigureTopic(pubsub.TopicGraph, pubsub.TopicConfig{BufferSize: 1})

	watched := *sess
	watched.Publisher = pub

	server := web.NewServer(sess, pub)
	if h, ok := sess.History.(*history.Store); ok {
		server.WithHistory(h)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, sess.Config.Port)
	})
	g.Go(func() error {
		return watched.Watch(gctx, reload)
	})
	return g.Wait()
}
