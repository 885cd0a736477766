package model

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Mode is the compilation strategy chosen by the planner for one invocation.
type Mode string

const (
	ModeInvalid     Mode = "invalid"      // Blank source or output root; nothing is runnable
	ModeFromScratch Mode = "from_scratch" // Output root missing or empty: compile every source directory
	ModeIncremental Mode = "incremental"  // Output root populated: compile stale files and their dependents
)

// LibraryPolicy controls how third-party archives from the lib directory are used.
type LibraryPolicy string

const (
	LibraryInclude LibraryPolicy = "include" // On the classpath and extracted into the jar
	LibraryExclude LibraryPolicy = "exclude" // On the classpath, referenced from the manifest
	LibraryIgnore  LibraryPolicy = "ignore"  // Never on the classpath
)

// ParseLibraryPolicy normalizes a policy string. Blank selects LibraryExclude.
func ParseLibraryPolicy(s string) (LibraryPolicy, error) {
	switch LibraryPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LibraryExclude:
		return LibraryExclude, nil
	case LibraryInclude:
		return LibraryInclude, nil
	case LibraryIgnore:
		return LibraryIgnore, nil
	}
	return "", fmt.Errorf("unknown library policy %q (want include, exclude or ignore)", s)
}

// ExpansionPolicy selects how far dependents of stale files are followed.
type ExpansionPolicy string

const (
	// ExpansionShallow adds only direct importers of the initially stale files.
	ExpansionShallow ExpansionPolicy = "shallow"
	// ExpansionTransitive repeats the expansion until no new files are added.
	ExpansionTransitive ExpansionPolicy = "transitive"
)

// ParseExpansionPolicy normalizes an expansion string. Blank selects ExpansionShallow.
func ParseExpansionPolicy(s string) (ExpansionPolicy, error) {
	switch ExpansionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExpansionShallow:
		return ExpansionShallow, nil
	case ExpansionTransitive:
		return ExpansionTransitive, nil
	}
	return "", fmt.Errorf("unknown expansion policy %q (want shallow or transitive)", s)
}

// FileSet is a set of source files keyed by cleaned path.
// The zero value is not usable; create one with NewFileSet.
type FileSet struct {
	files map[string]struct{}
}

// NewFileSet creates a set holding the given paths.
func NewFileSet(paths ...string) *FileSet {
	s := &FileSet{files: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

// Add inserts a path and reports whether it was new.
func (s *FileSet) Add(path string) bool {
	key := filepath.Clean(path)
	if _, ok := s.files[key]; ok {
		return false
	}
	s.files[key] = struct{}{}
	return true
}

// Has reports whether the path is in the set.
func (s *FileSet) Has(path string) bool {
	_, ok := s.files[filepath.Clean(path)]
	return ok
}

// Len returns the number of files in the set.
func (s *FileSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// Paths returns the members in unspecified order.
func (s *FileSet) Paths() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

// Sorted returns the members in reverse lexicographic order, the order
// used when rendering compiler file lists.
func (s *FileSet) Sorted() []string {
	out := s.Paths()
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Clone returns an independent copy of the set.
func (s *FileSet) Clone() *FileSet {
	return NewFileSet(s.Paths()...)
}

// MarshalJSON renders the set as a sorted array.
func (s *FileSet) MarshalJSON() ([]byte, error) {
	paths := s.Paths()
	sort.Strings(paths)
	if paths == nil {
		paths = []string{}
	}
	return json.Marshal(paths)
}
