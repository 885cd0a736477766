package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/javabuild/pkg/command"
	"github.com/ritzau/javabuild/pkg/logging"
)

// ErrNotRunnable is returned for empty commands.
var ErrNotRunnable = errors.New("command is not runnable")

// Stream identifies where an output line came from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// LineFunc receives process output one line at a time. Calls are serialized.
type LineFunc func(stream Stream, line string)

// Executor runs synthesized commands
type Executor interface {
	Run(ctx context.Context, dir string, cmd command.BuildCommand, onLine LineFunc) error
}

// ShellExecutor runs commands through the platform shell
type ShellExecutor struct {
	Shell []string
}

// NewExecutor creates an executor for the given platform
func NewExecutor(p command.Platform) Executor {
	return &ShellExecutor{Shell: p.Shell}
}

// Run executes cmd in dir (the current directory when blank) and streams its
// output to onLine. It respects the provided context for cancellation.
func (e *ShellExecutor) Run(ctx context.Context, dir string, cmd command.BuildCommand, onLine LineFunc) error {
	if !cmd.Runnable() {
		return ErrNotRunnable
	}
	if len(e.Shell) == 0 {
		return fmt.Errorf("no shell configured")
	}

	args := append(append([]string(nil), e.Shell[1:]...), string(cmd))
	proc := exec.CommandContext(ctx, e.Shell[0], args...)
	proc.Dir = dir

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := proc.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr: %w", err)
	}

	logging.DebugContext(ctx, "executing", "command", string(cmd), "dir", dir)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.Shell[0], err)
	}

	var mu sync.Mutex
	emit := func(stream Stream, line string) {
		if onLine == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		onLine(stream, line)
	}

	var g errgroup.Group
	g.Go(func() error { return scanLines(stdout, Stdout, emit) })
	g.Go(func() error { return scanLines(stderr, Stderr, emit) })
	scanErr := g.Wait()

	if err := proc.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("command exited with status %d: %w", exitErr.ExitCode(), err)
		}
		return fmt.Errorf("command failed: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read output: %w", scanErr)
	}
	return nil
}

func scanLines(r io.Reader, stream Stream, emit LineFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		emit(stream, scanner.Text())
	}
	return scanner.Err()
}
