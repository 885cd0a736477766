// Package planner decides what a build invocation has to compile.
//
// A plan is computed fresh on every call. The mode is a pure function of the
// output root at planning time: a missing or empty output root means
// everything is compiled from scratch, otherwise only stale files and the
// files importing them are.
package planner

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/cycles"
	"github.com/ritzau/javabuild/pkg/deps"
	"github.com/ritzau/javabuild/pkg/finder"
	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/stale"
)

// Request is the configuration one planning run works from.
type Request struct {
	SourceRoot   string
	OutputRoot   string
	LibDir       string
	Libraries    model.LibraryPolicy
	Flags        string
	Expansion    model.ExpansionPolicy
	Platform     command.Platform
	Release      int
	Timeout      time.Duration // 0 means no deadline beyond ctx
	ForceScratch bool          // compile every source directory regardless of the output root
}

// Plan is the outcome of one planning run. Fields that do not apply to the
// selected mode are left empty.
type Plan struct {
	RunID      string     `json:"runId"`
	Mode       model.Mode `json:"mode"`
	SourceRoot string     `json:"sourceRoot"`
	OutputRoot string     `json:"outputRoot"`

	// FROM_SCRATCH
	SourceDirs []string `json:"sourceDirs,omitempty"`

	// INCREMENTAL
	Candidates []string             `json:"candidates,omitempty"`
	Stale      *model.FileSet       `json:"stale,omitempty"`
	Expanded   *model.FileSet       `json:"expanded,omitempty"`
	Skipped    []string             `json:"skipped,omitempty"`
	Cycles     []cycles.ImportCycle `json:"cycles,omitempty"`
	Index      *deps.Index          `json:"-"`

	Libraries   []string `json:"libraries,omitempty"`
	NoSources   bool     `json:"noSources"`
	NothingToDo bool     `json:"nothingToDo"`
}

// Runnable reports whether the plan has anything to compile.
func (p *Plan) Runnable() bool {
	return p.Mode != model.ModeInvalid && !p.NoSources && !p.NothingToDo
}

// Checker decides staleness for one source file.
type Checker interface {
	Stale(src string) bool
}

// Planner runs the enumerate, detect, expand pipeline.
type Planner struct {
	// NewChecker builds the staleness checker for a run. Defaults to a
	// stale.Detector over the request's roots.
	NewChecker func(sourceRoot, outputRoot string) Checker
}

// New returns a planner using mtime-based staleness detection.
func New() *Planner {
	return &Planner{}
}

func (p *Planner) checker(sourceRoot, outputRoot string) Checker {
	if p.NewChecker != nil {
		return p.NewChecker(sourceRoot, outputRoot)
	}
	return stale.Detector{SourceRoot: sourceRoot, OutputRoot: outputRoot}
}

// Plan computes the plan for req. A blank source or output root yields an
// invalid plan without touching the filesystem. The returned error is only
// ever the context error; the partial plan is returned alongside it.
func (p *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	plan := &Plan{
		RunID:      uuid.NewString(),
		SourceRoot: req.SourceRoot,
		OutputRoot: req.OutputRoot,
	}
	ctx = logging.WithRunID(ctx, plan.RunID)

	if strings.TrimSpace(req.SourceRoot) == "" || strings.TrimSpace(req.OutputRoot) == "" {
		plan.Mode = model.ModeInvalid
		logging.WarnContext(ctx, "blank source or output root", "source", req.SourceRoot, "target", req.OutputRoot)
		return plan, nil
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	if req.Libraries != model.LibraryIgnore && req.LibDir != "" {
		plan.Libraries = finder.LibraryArchives(ctx, req.LibDir)
	}

	if req.ForceScratch || finder.IsEmptyDir(req.OutputRoot) {
		p.planFromScratch(ctx, req, plan)
	} else {
		p.planIncremental(ctx, req, plan)
	}

	logging.InfoContext(ctx, "plan ready",
		"mode", string(plan.Mode),
		"dirs", len(plan.SourceDirs),
		"stale", plan.Stale.Len(),
		"expanded", plan.Expanded.Len(),
		"libs", len(plan.Libraries),
	)
	return plan, ctx.Err()
}

func (p *Planner) planFromScratch(ctx context.Context, req Request, plan *Plan) {
	plan.Mode = model.ModeFromScratch
	if !exists(req.SourceRoot) {
		logging.DebugContext(ctx, "source root missing", "source", req.SourceRoot)
		plan.NoSources = true
		return
	}
	plan.SourceDirs = finder.SourceDirs(ctx, req.SourceRoot)
	plan.NoSources = len(plan.SourceDirs) == 0
}

func (p *Planner) planIncremental(ctx context.Context, req Request, plan *Plan) {
	plan.Mode = model.ModeIncremental
	if !exists(req.SourceRoot) {
		logging.DebugContext(ctx, "source root missing", "source", req.SourceRoot)
		plan.NoSources = true
		return
	}

	plan.Candidates = finder.SourceFiles(ctx, req.SourceRoot)
	if len(plan.Candidates) == 0 {
		plan.NoSources = true
		return
	}

	check := p.checker(req.SourceRoot, req.OutputRoot)
	plan.Stale = model.NewFileSet()
	for _, src := range plan.Candidates {
		if ctx.Err() != nil {
			break
		}
		if check.Stale(src) {
			logging.TraceContext(ctx, "stale source", "path", src)
			plan.Stale.Add(src)
		}
	}

	idx := deps.BuildIndex(ctx, req.SourceRoot, plan.Candidates)
	plan.Index = idx
	plan.Skipped = idx.Skipped()
	plan.Expanded = deps.Expander{Policy: req.Expansion}.Expand(ctx, idx, plan.Stale)
	plan.Cycles = cycles.FindImportCycles(idx.Graph)
	plan.NothingToDo = plan.Expanded.Len() == 0

	if len(plan.Cycles) > 0 {
		logging.DebugContext(ctx, "import cycles present", "count", len(plan.Cycles))
	}
}

// Command renders the compiler invocation for a plan computed from req.
func (p *Planner) Command(req Request, plan *Plan) command.BuildCommand {
	if plan == nil || !plan.Runnable() {
		return ""
	}
	return command.NewSynthesizer(req.Platform).Compile(command.CompileInput{
		Mode:       plan.Mode,
		SourceDirs: plan.SourceDirs,
		Files:      plan.Expanded.Paths(),
		OutputRoot: req.OutputRoot,
		Flags:      req.Flags,
		Policy:     req.Libraries,
		Libraries:  plan.Libraries,
		Release:    req.Release,
	})
}

// Compile plans and renders in one step. The command is empty when the plan
// is invalid, has no sources, or has nothing to do.
func (p *Planner) Compile(ctx context.Context, req Request) (command.BuildCommand, *Plan, error) {
	plan, err := p.Plan(ctx, req)
	return p.Command(req, plan), plan, err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
