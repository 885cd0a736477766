// Package stale decides which source files must be recompiled by comparing
// modification times against their compiled artifacts.
//
// The comparison is timestamp-only: content-identical files whose timestamp
// was bumped are reported stale, and an edit that keeps an equal timestamp on
// a filesystem with coarse resolution is missed.
package stale

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CompiledExt is the extension of compiled artifacts.
const CompiledExt = ".class"

// ArtifactPath maps a source file to its expected compiled artifact by
// replacing the source root prefix with the output root and the source
// extension with CompiledExt. Sources outside sourceRoot are mapped by
// their base name directly under outputRoot.
func ArtifactPath(sourceRoot, outputRoot, src string) string {
	rel, err := filepath.Rel(filepath.Clean(sourceRoot), filepath.Clean(src))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + CompiledExt
	return filepath.Join(outputRoot, rel)
}

// Compare is the staleness rule: an artifact that does not exist is stale;
// otherwise the source is stale only if it is strictly newer. Equal
// timestamps count as already built.
func Compare(srcMod time.Time, artifactExists bool, artifactMod time.Time) bool {
	if !artifactExists {
		return true
	}
	return srcMod.After(artifactMod)
}

// IsStale reports whether src must be recompiled given its artifact path.
// An unreadable source is never stale; it cannot be compiled anyway and the
// compiler reports it if it is referenced.
func IsStale(src, artifact string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	artInfo, err := os.Stat(artifact)
	if err != nil {
		return Compare(srcInfo.ModTime(), false, time.Time{})
	}
	return Compare(srcInfo.ModTime(), true, artInfo.ModTime())
}

// Detector checks sources below SourceRoot against artifacts below OutputRoot.
type Detector struct {
	SourceRoot string
	OutputRoot string
}

// Stale reports whether src needs recompiling.
func (d Detector) Stale(src string) bool {
	return IsStale(src, ArtifactPath(d.SourceRoot, d.OutputRoot, src))
}

// Filter returns the subset of sources that are stale, preserving order.
func (d Detector) Filter(sources []string) []string {
	var out []string
	for _, src := range sources {
		if d.Stale(src) {
			out = append(out, src)
		}
	}
	return out
}
