// Package build runs the user facing operations: it turns configuration into
// planning requests, renders commands and hands them to the executor.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/config"
	"github.com/ritzau/javabuild/pkg/executor"
	"github.com/ritzau/javabuild/pkg/finder"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/javasrc"
	"github.com/ritzau/javabuild/pkg/lens"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/output"
	"github.com/ritzau/javabuild/pkg/planner"
	"github.com/ritzau/javabuild/pkg/project"
	"github.com/ritzau/javabuild/pkg/pubsub"
)

// Kind names a synthesized command
type Kind string

const (
	KindCompile Kind = "compile"
	KindScratch Kind = "scratch"
	KindRun     Kind = "run"
	KindJar     Kind = "jar"
	KindExtract Kind = "extract"
)

// Kinds lists the command kinds in display order
var Kinds = []Kind{KindCompile, KindScratch, KindRun, KindJar, KindExtract}

// ErrNothingToRun is returned when an operation has no runnable command
var ErrNothingToRun = errors.New("nothing to run")

// Recorder stores compile outcomes
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Session ties one configuration to the planner, the synthesizer and the
// executor. A session is not safe for concurrent operations; the inspection
// server only calls its read-only methods.
type Session struct {
	Config    *config.Config
	Planner   *planner.Planner
	Synth     *command.Synthesizer
	Exec      executor.Executor
	Console   *output.Console
	Publisher pubsub.Publisher // optional, receives build progress
	History   Recorder         // optional, records compile outcomes
	DryRun    bool

	// last graph view published, diffed against on the next plan
	graph *lens.GraphSnapshot
}

// NewSession creates a session executing through the configured platform shell
func NewSession(cfg *config.Config, console *output.Console) *Session {
	return &Session{
		Config:  cfg,
		Planner: planner.New(),
		Synth:   command.NewSynthesizer(cfg.TargetPlatform),
		Exec:    executor.NewExecutor(cfg.TargetPlatform),
		Console: console,
		DryRun:  cfg.DryRun,
	}
}

// Reconfigure switches the session to cfg. The executor is replaced only when
// the target platform changes, so commands always run in the shell they were
// rendered for.
func (s *Session) Reconfigure(cfg *config.Config) {
	if cfg.TargetPlatform.Name != s.Synth.Platform.Name {
		s.Exec = executor.NewExecutor(cfg.TargetPlatform)
	}
	s.Config = cfg
	s.Synth = command.NewSynthesizer(cfg.TargetPlatform)
	s.DryRun = cfg.DryRun
}

// Request builds the planning request for the current configuration
func (s *Session) Request() planner.Request {
	c := s.Config
	return planner.Request{
		SourceRoot: c.SourcePath(),
		OutputRoot: c.TargetPath(),
		LibDir:     c.LibPath(),
		Libraries:  c.LibraryPolicy,
		Flags:      c.Flags,
		Expansion:  c.ExpansionPolicy,
		Platform:   c.TargetPlatform,
		Release:    c.Release,
		Timeout:    c.Timeout,
	}
}

// Plan computes a fresh plan
func (s *Session) Plan(ctx context.Context) (*planner.Plan, error) {
	return s.Planner.Plan(ctx, s.Request())
}

// MainClass returns the configured main class, or the detected entry point
func (s *Session) MainClass(ctx context.Context) (string, bool) {
	if m := strings.TrimSpace(s.Config.Main); m != "" {
		return m, true
	}
	return javasrc.FindEntryPoint(ctx, s.Config.SourcePath(), javasrc.EntryPointDepth)
}

// JarName returns the archive name, derived from the project directory
func (s *Session) JarName() string {
	return project.ProjectName(s.Config.Root) + ".jar"
}

// libraries lists the archives on the classpath under the current policy
func (s *Session) libraries(ctx context.Context) []string {
	if s.Config.LibraryPolicy == model.LibraryIgnore {
		return nil
	}
	return finder.LibraryArchives(ctx, s.Config.LibPath())
}

// CompileCommand plans and renders the compiler invocation
func (s *Session) CompileCommand(ctx context.Context, scratch bool) (command.BuildCommand, *planner.Plan, error) {
	req := s.Request()
	req.ForceScratch = scratch
	return s.Planner.Compile(ctx, req)
}

// RunCommand renders the launcher invocation
func (s *Session) RunCommand(ctx context.Context) command.BuildCommand {
	main, _ := s.MainClass(ctx)
	return s.Synth.Run(command.RunInput{
		OutputRoot: s.Config.TargetPath(),
		MainClass:  main,
		Policy:     s.Config.LibraryPolicy,
		Libraries:  s.libraries(ctx),
	})
}

// JarCommand renders the archiver invocation. The manifest is used when the
// project has one; otherwise the entry point is passed directly.
func (s *Session) JarCommand(ctx context.Context) command.BuildCommand {
	main, _ := s.MainClass(ctx)
	return s.Synth.Jar(command.JarInput{
		Name:          s.JarName(),
		OutputRoot:    s.Config.TargetPath(),
		WithManifest:  project.HasManifest(s.Config.Root),
		MainClass:     main,
		Policy:        s.Config.LibraryPolicy,
		ExtractedDirs: project.ExtractedDirs(s.Config.ExtractPath()),
	})
}

// ExtractCommands renders one unpack command per library archive. Archives
// are only bundled under the include policy.
func (s *Session) ExtractCommands(ctx context.Context) []command.BuildCommand {
	if s.Config.LibraryPolicy != model.LibraryInclude {
		return nil
	}
	targets := project.ExtractionTargets(ctx, s.libraries(ctx), s.Config.ExtractPath())
	return s.Synth.Extract(targets)
}

// CommandFor renders the command of the given kind without running anything
func (s *Session) CommandFor(ctx context.Context, kind Kind) ([]command.BuildCommand, error) {
	switch kind {
	case KindCompile, KindScratch:
		cmd, _, err := s.CompileCommand(ctx, kind == KindScratch)
		return []command.BuildCommand{cmd}, err
	case KindRun:
		return []command.BuildCommand{s.RunCommand(ctx)}, nil
	case KindJar:
		return []command.BuildCommand{s.JarCommand(ctx)}, nil
	case KindExtract:
		return s.ExtractCommands(ctx), nil
	}
	return nil, fmt.Errorf("unknown command kind %q", kind)
}

// execute prints cmd and runs it from the project root unless in dry-run mode
func (s *Session) execute(ctx context.Context, cmd command.BuildCommand) error {
	if !cmd.Runnable() {
		return ErrNothingToRun
	}
	s.Console.Command(cmd)
	if s.DryRun {
		return nil
	}
	return s.Exec.Run(ctx, s.Config.Root, cmd, s.Console.Line)
}

func (s *Session) publish(topic, eventType string, data interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(topic, eventType, data); err != nil {
		logging.Debug("publish failed", "topic", topic, "error", err)
	}
}

// publishGraph sends what changed in the import graph since the last plan
func (s *Session) publishGraph(plan *planner.Plan) {
	if s.Publisher == nil || plan.Index == nil {
		return
	}
	view := plan.Index.Graph.View(plan.Stale)
	diff := lens.ComputeDiff(s.graph, view)
	s.graph = lens.CreateSnapshot(view)
	if !diff.Empty() {
		s.publish(pubsub.TopicGraph, "diff", diff)
	}
}

func removeAll(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
