package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ritzau/javabuild/pkg/executor"
	"github.com/ritzau/javabuild/pkg/history"
	"github.com/ritzau/javabuild/pkg/model"
	"github.com/ritzau/javabuild/pkg/planner"
)

func init() {
	color.NoColor = true
}

func TestConsoleMessages(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Command(`javac -d "bin" x`)
	c.Info("wrote %s", "build.sh")
	c.Warning("no main class")
	c.Line(executor.Stderr, "error: cannot find symbol")

	want := "[Command] javac -d \"bin\" x\n" +
		"[Info] wrote build.sh\n" +
		"[Warning] no main class\n" +
		"error: cannot find symbol\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPlanReportIncremental(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).PlanReport(&planner.Plan{
		Mode:       model.ModeIncremental,
		SourceRoot: "src",
		OutputRoot: "bin",
		Candidates: []string{"src/A.java", "src/B.java", "src/C.java"},
		Stale:      model.NewFileSet("src/A.java"),
		Expanded:   model.NewFileSet("src/A.java", "src/B.java"),
	})

	out := buf.String()
	for _, want := range []string{"Mode:   incremental", "Stale:   1", "src/B.java (dependent)", "Scanned: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

func TestPlanReportNothingToDo(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).PlanReport(&planner.Plan{
		Mode:        model.ModeIncremental,
		Stale:       model.NewFileSet(),
		Expanded:    model.NewFileSet(),
		NothingToDo: true,
	})
	if !strings.Contains(buf.String(), "up to date") {
		t.Errorf("report = %s", buf.String())
	}
}

func TestPlanReportInvalid(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).PlanReport(&planner.Plan{Mode: model.ModeInvalid})
	if !strings.Contains(buf.String(), "blank") {
		t.Errorf("report = %s", buf.String())
	}
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.History(nil)
	if !strings.Contains(buf.String(), "No builds recorded") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	c.History([]history.Entry{
		{RunID: "0123456789abcdef", Mode: "incremental", Status: "failed", Stale: 2, Compiled: 3, StartedAt: time.Now(), Duration: 1234567 * time.Microsecond},
		{RunID: "r1", Mode: "from_scratch", Status: "succeeded", StartedAt: time.Now()},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for _, want := range []string{"failed", "incremental", "2 stale", "3 compiled", "1.235s", "run=01234567"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "run=r1") {
		t.Errorf("short run id altered: %q", lines[1])
	}
}
