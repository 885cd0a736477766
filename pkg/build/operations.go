package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ritzau/javabuild/pkg/config"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/planner"
	"github.com/ritzau/javabuild/pkg/project"
	"github.com/ritzau/javabuild/pkg/pubsub"
)

// Compile plans and runs the compiler. An up-to-date or empty project is
// reported, not treated as an error.
func (s *Session) Compile(ctx context.Context, scratch bool) error {
	s.publish(pubsub.TopicBuildStatus, string(pubsub.StatePlanning), pubsub.BuildStatus{State: pubsub.StatePlanning})

	started := time.Now()
	cmd, plan, err := s.CompileCommand(ctx, scratch)
	if err != nil {
		return fmt.Errorf("planning interrupted: %w", err)
	}
	planDuration.Observe(time.Since(started).Seconds())
	plansTotal.WithLabelValues(string(plan.Mode)).Inc()
	if plan.Mode == model.ModeIncremental {
		staleFiles.Observe(float64(plan.Stale.Len()))
		compiledFiles.Observe(float64(plan.Expanded.Len()))
	}

	s.publish(pubsub.TopicPlan, "plan", pubsub.PlanSummary{
		RunID:       plan.RunID,
		Mode:        string(plan.Mode),
		Stale:       plan.Stale.Len(),
		Expanded:    plan.Expanded.Len(),
		Cycles:      len(plan.Cycles),
		NothingToDo: plan.NothingToDo,
		Command:     string(cmd),
	})
	s.publishGraph(plan)

	kind := KindCompile
	if scratch {
		kind = KindScratch
	}

	switch {
	case plan.Mode == model.ModeInvalid:
		return fmt.Errorf("source and target directories must not be blank")
	case plan.NoSources:
		s.Console.Warning("no source files under %s", plan.SourceRoot)
		return nil
	case plan.NothingToDo:
		s.Console.Info("everything is up to date")
		s.finish(ctx, kind, plan, pubsub.StateUpToDate, started, nil)
		return nil
	}
	for _, c := range plan.Cycles {
		s.Console.Warning("import cycle: %v", c.Files)
	}

	s.publish(pubsub.TopicBuildStatus, string(pubsub.StateCompiling), pubsub.BuildStatus{State: pubsub.StateCompiling, RunID: plan.RunID})
	compileStarted := time.Now()
	err = s.execute(ctx, cmd)
	if !s.DryRun {
		compileDuration.Observe(time.Since(compileStarted).Seconds())
	}
	if err != nil {
		s.finish(ctx, kind, plan, pubsub.StateFailed, started, err)
		return fmt.Errorf("compilation failed: %w", err)
	}
	s.finish(ctx, kind, plan, pubsub.StateSucceeded, started, nil)
	return nil
}

// finish publishes, counts and records the outcome of a compile. Dry runs
// are not recorded.
func (s *Session) finish(ctx context.Context, kind Kind, plan *planner.Plan, state pubsub.BuildState, started time.Time, err error) {
	status := pubsub.BuildStatus{State: state, RunID: plan.RunID}
	if err != nil {
		status.Message = err.Error()
	}
	s.publish(pubsub.TopicBuildStatus, string(state), status)
	compilesTotal.WithLabelValues(string(state)).Inc()

	if s.History == nil || s.DryRun {
		return
	}
	compiled := plan.Expanded.Len()
	if plan.Mode == model.ModeFromScratch {
		compiled = len(plan.SourceDirs)
	}
	entry := history.Entry{
		RunID:     plan.RunID,
		Kind:      string(kind),
		Mode:      string(plan.Mode),
		Status:    string(state),
		Stale:     plan.Stale.Len(),
		Compiled:  compiled,
		Message:   status.Message,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if err := s.History.Record(ctx, entry); err != nil {
		logging.WarnContext(ctx, "failed to record build", "error", err)
	}
}

// Run compiles what is stale and launches the main class
func (s *Session) Run(ctx context.Context) error {
	if err := s.Compile(ctx, false); err != nil {
		return err
	}
	cmd := s.RunCommand(ctx)
	if !cmd.Runnable() {
		return fmt.Errorf("no main class configured or found under %s", s.Config.SourcePath())
	}
	return s.execute(ctx, cmd)
}

// Extract copies the library archives into the extraction directory and
// unpacks them. Only used under the include policy.
func (s *Session) Extract(ctx context.Context) error {
	if s.Config.LibraryPolicy != model.LibraryInclude {
		s.Console.Info("libraries are not bundled under the %s policy", s.Config.LibraryPolicy)
		return nil
	}
	if !s.DryRun {
		copied, err := project.PrepareExtraction(ctx, s.libraries(ctx), s.Config.ExtractPath())
		if err != nil {
			return fmt.Errorf("failed to prepare extraction: %w", err)
		}
		s.Console.Info("copied %d archive(s) to %s", len(copied), s.Config.ExtractPath())
	}
	for _, cmd := range s.ExtractCommands(ctx) {
		if err := s.execute(ctx, cmd); err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}
	}
	return nil
}

// Jar packages the compiled classes, bundling libraries under include
func (s *Session) Jar(ctx context.Context) error {
	if s.Config.LibraryPolicy == model.LibraryInclude {
		if err := s.Extract(ctx); err != nil {
			return err
		}
	}
	if !project.HasManifest(s.Config.Root) {
		if _, ok := s.MainClass(ctx); !ok {
			s.Console.Warning("no manifest and no main class; the jar has no entry point")
		}
	}
	cmd := s.JarCommand(ctx)
	if err := s.execute(ctx, cmd); err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}
	return nil
}

// Build removes the output directory, compiles everything and packages it
func (s *Session) Build(ctx context.Context) error {
	if s.DryRun {
		s.Console.Info("would remove %s", s.Config.TargetPath())
	} else if err := removeAll(s.Config.TargetPath()); err != nil {
		return err
	}
	if err := s.Compile(ctx, true); err != nil {
		return err
	}
	return s.Jar(ctx)
}

// Manifest writes the manifest for the current configuration
func (s *Session) Manifest(ctx context.Context) (string, error) {
	main, _ := s.MainClass(ctx)
	m := project.Manifest{Author: s.Config.Author, MainClass: main}
	if s.Config.LibraryPolicy == model.LibraryExclude {
		m.ClassPath = s.libraries(ctx)
		if len(m.ClassPath) > 0 {
			s.Console.Warning("referencing %d archive(s) from the manifest instead of bundling them", len(m.ClassPath))
		}
	}
	return project.WriteManifest(s.Config.Root, m)
}

// Script writes a standalone build script reproducing a full build
func (s *Session) Script(ctx context.Context) (string, error) {
	req := s.Request()
	req.ForceScratch = true
	compile, _, err := s.Planner.Compile(ctx, req)
	if err != nil {
		return "", err
	}
	if !compile.Runnable() {
		return "", fmt.Errorf("no source files under %s", s.Config.SourcePath())
	}

	script := project.Script{
		Platform: s.Synth.Platform,
		Extract:  s.ExtractCommands(ctx),
		Compile:  compile,
		Jar:      s.JarCommand(ctx),
	}
	if _, ok := s.MainClass(ctx); ok {
		script.Run = s.Synth.Launch(s.JarName())
	}
	path, err := project.WriteScript(s.Config.Root, script)
	if err != nil {
		return "", err
	}
	s.Console.Info("wrote %s", path)
	return path, nil
}

// Init scaffolds a new project and writes the default config file
func (s *Session) Init(ctx context.Context) error {
	created, err := project.Scaffold(project.Layout{
		Root:   s.Config.Root,
		Source: s.Config.Source,
		Author: s.Config.Author,
	})
	for _, path := range created {
		s.Console.Info("created %s", path)
	}
	if err != nil {
		return err
	}

	written, err := config.WriteDefault(s.Config.ConfigPath())
	if err != nil {
		return err
	}
	if written {
		s.Console.Info("created %s", s.Config.ConfigPath())
	}
	return nil
}

// AddDependency copies a library into the lib directory
func (s *Session) AddDependency(ctx context.Context, path string) error {
	dest, err := project.AddDependency(ctx, s.Config.LibPath(), path)
	if errors.Is(err, project.ErrDependencyExists) {
		s.Console.Warning("dependency already inside the project: %s", dest)
		return nil
	}
	if err != nil {
		return err
	}
	s.Console.Info("added %s", dest)
	return nil
}
