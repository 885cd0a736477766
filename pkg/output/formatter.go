package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/executor"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/planner"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// Console prints user facing messages. Diagnostics go through the logger
type Console struct {
	w io.Writer
}

// NewConsole creates a console writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Command announces a command about to run (or printed in dry-run mode)
func (c *Console) Command(cmd command.BuildCommand) {
	cyan.Fprint(c.w, "[Command] ")
	fmt.Fprintln(c.w, string(cmd))
}

// Info prints an informational message
func (c *Console) Info(format string, args ...any) {
	green.Fprint(c.w, "[Info] ")
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Warning prints a warning
func (c *Console) Warning(format string, args ...any) {
	yellow.Fprint(c.w, "[Warning] ")
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Error prints an error
func (c *Console) Error(format string, args ...any) {
	red.Fprint(c.w, "[Error] ")
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Line prints one line of process output. Standard error is highlighted.
func (c *Console) Line(stream executor.Stream, line string) {
	if stream == executor.Stderr {
		red.Fprintln(c.w, line)
		return
	}
	fmt.Fprintln(c.w, line)
}

// PlanReport prints a human readable summary of a plan
func (c *Console) PlanReport(p *planner.Plan) {
	bold.Fprintln(c.w, "Build Plan")
	bold.Fprintln(c.w, "==========")
	fmt.Fprintf(c.w, "Source: %s\n", p.SourceRoot)
	fmt.Fprintf(c.w, "Output: %s\n", p.OutputRoot)
	fmt.Fprintf(c.w, "Mode:   %s\n", p.Mode)

	switch {
	case p.Mode == model.ModeInvalid:
		red.Fprintln(c.w, "Source or output root is blank; nothing can be compiled")
		return
	case p.NoSources:
		yellow.Fprintln(c.w, "No source files found")
		return
	}

	if p.Mode == model.ModeFromScratch {
		fmt.Fprintf(c.w, "Directories: %d\n", len(p.SourceDirs))
		for _, d := range p.SourceDirs {
			cyan.Fprintf(c.w, "  %s\n", d)
		}
	} else {
		fmt.Fprintf(c.w, "Scanned: %d source files\n", len(p.Candidates))
		fmt.Fprintf(c.w, "Stale:   %d\n", p.Stale.Len())
		fmt.Fprintf(c.w, "Total:   %d (with dependents)\n", p.Expanded.Len())
		for _, f := range p.Expanded.Sorted() {
			if p.Stale.Has(f) {
				yellow.Fprintf(c.w, "  %s\n", f)
			} else {
				cyan.Fprintf(c.w, "  %s (dependent)\n", f)
			}
		}
	}

	if len(p.Libraries) > 0 {
		fmt.Fprintf(c.w, "Libraries: %d\n", len(p.Libraries))
	}
	for _, skipped := range p.Skipped {
		yellow.Fprintf(c.w, "Skipped unreadable file: %s\n", skipped)
	}
	if len(p.Cycles) > 0 {
		yellow.Fprintf(c.w, "Import cycles: %d\n", len(p.Cycles))
		for _, cyc := range p.Cycles {
			fmt.Fprintf(c.w, "  %v\n", cyc.Files)
		}
	}

	if p.NothingToDo {
		green.Fprintln(c.w, "✓ Everything is up to date")
	}
}

// History prints recorded builds, newest first
func (c *Console) History(entries []history.Entry) {
	if len(entries) == 0 {
		yellow.Fprintln(c.w, "No builds recorded")
		return
	}
	for _, e := range entries {
		status := green
		switch e.Status {
		case "failed":
			status = red
		case "up_to_date":
			status = cyan
		}
		fmt.Fprintf(c.w, "%s  ", e.StartedAt.Local().Format("2006-01-02 15:04:05"))
		status.Fprintf(c.w, "%-10s", e.Status)
		fmt.Fprintf(c.w, "  %-12s %4d stale %4d compiled  %8s  run=%s\n",
			e.Mode, e.Stale, e.Compiled, e.Duration.Round(time.Millisecond), shortID(e.RunID))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
