package javasrc

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/javabuild/pkg/finder"
	"github.com/ritzau/javabuild/pkg/logging"
)

const (
	// EntrySignature marks a file declaring the program entry point.
	EntrySignature = "public static void main"
	// TestLauncher is never chosen as the entry point.
	TestLauncher = "TestLauncher.java"
	// EntryPointDepth is how deep FindEntryPoint looks by default.
	EntryPointDepth = 2
)

// FindEntryPoint returns the symbol of the first source file under root
// (at most maxDepth levels deep, <= 0 for unbounded) containing
// EntrySignature. Candidates are visited in lexicographic path order so the
// choice does not depend on the filesystem.
func FindEntryPoint(ctx context.Context, root string, maxDepth int) (string, bool) {
	for _, path := range finder.Files(ctx, root, maxDepth, finder.SourceExt) {
		if ctx.Err() != nil {
			return "", false
		}
		if filepath.Base(path) == TestLauncher {
			continue
		}
		ok, err := declaresEntryPoint(path)
		if err != nil {
			logging.WarnContext(ctx, "skipping unreadable file", "path", path, "error", err)
			continue
		}
		if ok {
			return Symbol(root, path), true
		}
	}
	return "", false
}

func declaresEntryPoint(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), EntrySignature) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
