package build

import (
	"context"
	"time"

	"github.com/ritzau/javabuild/pkg/config"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/watcher"
)

const (
	watchQuietPeriod = 300 * time.Millisecond
	watchMaxWait     = 3 * time.Second
)

// ReloadFunc reloads the configuration after a config file changed
type ReloadFunc func() (*config.Config, error)

// Watch compiles once, then recompiles whenever sources, libraries or
// config files change, until ctx is cancelled. Compilation failures are
// reported and watching continues.
func (s *Session) Watch(ctx context.Context, reload ReloadFunc) error {
	fw, err := watcher.NewFileWatcher(watcher.Paths{
		Root:        s.Config.Root,
		Source:      s.Config.SourcePath(),
		Lib:         s.Config.LibPath(),
		ConfigFiles: []string{s.Config.File, config.TOMLFile, config.YAMLFile},
	})
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), watchQuietPeriod, watchMaxWait)
	debouncer.Start(ctx)

	s.rebuild(ctx, false)
	s.Console.Info("watching %s for changes", s.Config.SourcePath())

	for event := range debouncer.Output() {
		if ctx.Err() != nil {
			break
		}
		analysis := watcher.AnalyzeChanges(event)
		logging.Info("change detected", "type", event.Type.String(), "files", len(analysis.ChangedFiles))

		if analysis.ReloadConfig && reload != nil {
			cfg, err := reload()
			if err != nil {
				s.Console.Error("keeping previous configuration: %v", err)
			} else {
				s.Reconfigure(cfg)
			}
		}
		s.rebuild(ctx, analysis.FullRebuild)
	}
	return ctx.Err()
}

func (s *Session) rebuild(ctx context.Context, scratch bool) {
	if err := s.Compile(ctx, scratch); err != nil {
		s.Console.Error("%v", err)
	}
}
