package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/javabuild/pkg/logging"
)

const (
	// SourceExt is the extension of compilable source files.
	SourceExt = ".java"
	// ArchiveExt is the extension of third-party library archives.
	ArchiveExt = ".jar"
	// LibraryDepth bounds how deep the lib directory is searched for archives.
	LibraryDepth = 3
)

// Entry is one path found under an enumerated root.
type Entry struct {
	Path  string
	IsDir bool
}

// Enumerate lists every file and directory below root, following symbolic
// links. maxDepth <= 0 walks the whole tree; otherwise entries deeper than
// maxDepth levels below root are skipped (children of root are depth 1).
// The root itself is not part of the result.
//
// A missing or unreadable root yields an empty result. I/O errors met during
// the walk are logged and the entries found so far are kept. When ctx is
// cancelled the walk stops and the partial result is returned; callers check
// ctx.Err() to tell the two apart.
func Enumerate(ctx context.Context, root string, maxDepth int) []Entry {
	info, err := os.Stat(root)
	if err != nil {
		logging.DebugContext(ctx, "enumeration root unavailable", "root", root, "error", err)
		return nil
	}
	if !info.IsDir() {
		return nil
	}

	w := &walker{
		ctx:      ctx,
		maxDepth: maxDepth,
		visited:  make(map[string]bool),
	}
	w.walk(filepath.Clean(root), 0)
	return w.entries
}

type walker struct {
	ctx      context.Context
	maxDepth int
	visited  map[string]bool // resolved directory paths, guards symlink loops
	entries  []Entry
}

func (w *walker) walk(dir string, depth int) {
	if w.ctx.Err() != nil {
		return
	}
	if w.maxDepth > 0 && depth >= w.maxDepth {
		return
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		logging.WarnContext(w.ctx, "cannot resolve directory", "path", dir, "error", err)
		return
	}
	if w.visited[real] {
		logging.TraceContext(w.ctx, "skipping already visited directory", "path", dir)
		return
	}
	w.visited[real] = true

	children, err := os.ReadDir(dir)
	if err != nil {
		logging.WarnContext(w.ctx, "cannot read directory", "path", dir, "error", err)
		return
	}

	for _, child := range children {
		if w.ctx.Err() != nil {
			return
		}
		path := filepath.Join(dir, child.Name())

		isDir := child.IsDir()
		if child.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				logging.WarnContext(w.ctx, "dangling symbolic link", "path", path, "error", err)
				continue
			}
			isDir = target.IsDir()
		}

		w.entries = append(w.entries, Entry{Path: path, IsDir: isDir})
		if isDir {
			w.walk(path, depth+1)
		}
	}
}

// Files returns the regular files under root with the given extension,
// sorted by path.
func Files(ctx context.Context, root string, maxDepth int, ext string) []string {
	var files []string
	for _, e := range Enumerate(ctx, root, maxDepth) {
		if !e.IsDir && strings.EqualFold(filepath.Ext(e.Path), ext) {
			files = append(files, e.Path)
		}
	}
	sort.Strings(files)
	return files
}

// SourceFiles returns every source file below root.
func SourceFiles(ctx context.Context, root string) []string {
	return Files(ctx, root, 0, SourceExt)
}

// SourceDirs returns the directories under root (root included) that
// directly contain at least one source file, sorted by path.
func SourceDirs(ctx context.Context, root string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range SourceFiles(ctx, root) {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// LibraryArchives returns the archives found under libDir, searched to
// LibraryDepth levels.
func LibraryArchives(ctx context.Context, libDir string) []string {
	return Files(ctx, libDir, LibraryDepth, ArchiveExt)
}

// IsEmptyDir reports whether path is missing, not a directory, or a
// directory without entries.
func IsEmptyDir(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return true
	}
	return len(entries) == 0
}
