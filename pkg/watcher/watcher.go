package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/javabuild/pkg/finder"
	"github.com/ritzau/javabuild/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeConfig ChangeType = iota
	ChangeTypeLibrary
	ChangeTypeSource
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeConfig:
		return "config"
	case ChangeTypeLibrary:
		return "library"
	case ChangeTypeSource:
		return "source"
	}
	return "unknown"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// Paths watched by a FileWatcher
type Paths struct {
	Root        string   // project root, for config files
	Source      string   // watched recursively for source files
	Lib         string   // watched to finder.LibraryDepth for archives
	ConfigFiles []string // base names of config files in Root
}

// FileWatcher watches a project for changes that affect the build
type FileWatcher struct {
	watcher *fsnotify.Watcher
	paths   Paths
	events  chan ChangeEvent
	stop    sync.Once
}

// NewFileWatcher creates a new file system watcher for a project
func NewFileWatcher(paths Paths) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		paths:   paths,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start registers the watches and begins processing events until ctx is
// cancelled. The events channel is closed when processing stops.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := fw.watchTree(ctx, fw.paths.Source, 0)
	dirs += fw.watchTree(ctx, fw.paths.Lib, finder.LibraryDepth)
	if fw.paths.Root != "" {
		if err := fw.watcher.Add(fw.paths.Root); err != nil {
			logging.Warn("failed to watch project root", "path", fw.paths.Root, "error", err)
		} else {
			dirs++
		}
	}
	if dirs == 0 {
		return fmt.Errorf("nothing to watch under %s", fw.paths.Root)
	}

	logging.Info("started watching project", "source", fw.paths.Source, "dirs", dirs)
	go fw.processEvents(ctx)
	return nil
}

// watchTree adds root and its subdirectories, returning how many were added
func (fw *FileWatcher) watchTree(ctx context.Context, root string, maxDepth int) int {
	if root == "" || !isDir(root) {
		return 0
	}
	dirs := []string{root}
	for _, e := range finder.Enumerate(ctx, root, maxDepth) {
		if e.IsDir {
			dirs = append(dirs, e.Path)
		}
	}

	added := 0
	for _, dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			logging.Warn("failed to watch directory", "path", dir, "error", err)
			continue
		}
		added++
	}
	return added
}

// Classify maps a changed path to the kind of change it represents
func (fw *FileWatcher) Classify(path string) (ChangeType, bool) {
	name := filepath.Base(path)
	switch {
	case strings.EqualFold(filepath.Ext(name), finder.SourceExt) && within(fw.paths.Source, path):
		return ChangeTypeSource, true
	case strings.EqualFold(filepath.Ext(name), finder.ArchiveExt) && within(fw.paths.Lib, path):
		return ChangeTypeLibrary, true
	case filepath.Dir(path) == filepath.Clean(fw.paths.Root):
		for _, cf := range fw.paths.ConfigFiles {
			if name == cf {
				return ChangeTypeConfig, true
			}
		}
	}
	return 0, false
}

// processEvents forwards relevant fsnotify events, one path per event.
// Batching is left to the Debouncer.
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories under the source root need their own watch
			if event.Has(fsnotify.Create) && isDir(event.Name) && within(fw.paths.Source, event.Name) {
				fw.watchTree(ctx, event.Name, 0)
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			changeType, ok := fw.Classify(event.Name)
			if !ok {
				continue
			}
			logging.Trace("file change", "type", changeType.String(), "path", event.Name, "op", event.Op.String())

			select {
			case fw.events <- ChangeEvent{Type: changeType, Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop closes the underlying watcher. Processing ends and Events is closed.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stop.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func within(root, path string) bool {
	if root == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
