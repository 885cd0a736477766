package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/javabuild/pkg/logging"
)

// ErrDependencyExists is returned when a dependency of the same name is
// already present in the lib directory.
var ErrDependencyExists = errors.New("dependency already present")

// AddDependency copies a library into libDir/<name>/. A single archive is
// placed in a directory named after it without extension; a directory is
// copied as a whole under its own name. Version control metadata is skipped.
// A git URL is cloned under the repository name.
func AddDependency(ctx context.Context, libDir, src string) (string, error) {
	if IsRemote(src) {
		return cloneDependency(ctx, libDir, src)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("dependency not found: %w", err)
	}

	name := filepath.Base(filepath.Clean(src))
	if !info.IsDir() {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	dest := filepath.Join(libDir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, fmt.Errorf("%s: %w", dest, ErrDependencyExists)
	}

	if !info.IsDir() {
		target := filepath.Join(dest, filepath.Base(src))
		if err := copyFile(src, target); err != nil {
			_ = os.RemoveAll(dest)
			return "", err
		}
		logging.InfoContext(ctx, "dependency added", "path", target)
		return dest, nil
	}

	var jobs []copyJob
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, copyJob{from: path, to: filepath.Join(dest, rel)})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to list dependency: %w", err)
	}
	if err := copyAll(ctx, jobs); err != nil {
		_ = os.RemoveAll(dest)
		return "", err
	}
	logging.InfoContext(ctx, "dependency added", "path", dest, "files", len(jobs))
	return dest, nil
}

// ExtractionTargets maps each archive to extractDir/<parent>/<name>, where
// parent is the directory holding the archive in lib. When two archives map
// to the same target the first one wins. The result is sorted by target.
func ExtractionTargets(ctx context.Context, archives []string, extractDir string) []string {
	jobs := extractionJobs(ctx, archives, extractDir)
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.to)
	}
	sort.Strings(out)
	return out
}

// PrepareExtraction copies every archive to its ExtractionTargets location.
// Copies run in parallel. The returned paths are the copied archives, sorted.
func PrepareExtraction(ctx context.Context, archives []string, extractDir string) ([]string, error) {
	jobs := extractionJobs(ctx, archives, extractDir)
	if err := copyAll(ctx, jobs); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.to)
	}
	sort.Strings(out)
	return out, nil
}

func extractionJobs(ctx context.Context, archives []string, extractDir string) []copyJob {
	seen := make(map[string]string, len(archives))
	jobs := make([]copyJob, 0, len(archives))
	for _, a := range archives {
		parent := filepath.Base(filepath.Dir(a))
		to := filepath.Join(extractDir, parent, filepath.Base(a))
		if prev, ok := seen[to]; ok {
			logging.WarnContext(ctx, "archive shadowed by another with the same name", "archive", a, "kept", prev)
			continue
		}
		seen[to] = a
		jobs = append(jobs, copyJob{from: a, to: to})
	}
	return jobs
}

// ExtractedDirs returns the directories directly under extractDir, sorted.
func ExtractedDirs(extractDir string) []string {
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(extractDir, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}

type copyJob struct {
	from string
	to   string
}

// copyAll runs the jobs concurrently. Each job writes a distinct path.
func copyAll(ctx context.Context, jobs []copyJob) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return copyFile(j.from, j.to)
		})
	}
	return g.Wait()
}

// copyFile copies one file, creating parent directories and keeping the
// source's mode and modification time.
func copyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", from, err)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(to), err)
	}

	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", to, err)
	}
	return os.Chtimes(to, info.ModTime(), info.ModTime())
}
