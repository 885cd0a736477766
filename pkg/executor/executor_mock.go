package executor

import (
	"context"

	"github.com/ritzau/javabuild/pkg/command"
)

// MockExecutor is a mock implementation of Executor for testing
type MockExecutor struct {
	MockOutput []string
	MockError  error
	Commands   []command.BuildCommand
	Dirs       []string
}

func (m *MockExecutor) Run(ctx context.Context, dir string, cmd command.BuildCommand, onLine LineFunc) error {
	m.Commands = append(m.Commands, cmd)
	m.Dirs = append(m.Dirs, dir)
	if !cmd.Runnable() {
		return ErrNotRunnable
	}
	for _, line := range m.MockOutput {
		if onLine != nil {
			onLine(Stdout, line)
		}
	}
	return m.MockError
}
