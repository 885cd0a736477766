// Package project writes the files that surround a build: the jar manifest,
// the standalone build script, the initial project layout and the copies of
// third-party archives.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/javabuild/pkg/command"
)

// ManifestVersion is written as the first manifest attribute.
const ManifestVersion = "1.0"

// Manifest holds the attributes of Manifesto.txt. Empty attributes are omitted.
type Manifest struct {
	Author    string
	MainClass string
	ClassPath []string // archives referenced from the jar when libraries are excluded from it
}

// String renders the manifest in the jar manifest format.
func (m Manifest) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Manifest-Version: %s\n", ManifestVersion)
	if a := strings.TrimSpace(m.Author); a != "" {
		fmt.Fprintf(&b, "Created-By: %s\n", a)
	}
	if mc := strings.TrimSpace(m.MainClass); mc != "" {
		fmt.Fprintf(&b, "Main-Class: %s\n", mc)
	}
	if len(m.ClassPath) > 0 {
		entries := make([]string, len(m.ClassPath))
		for i, p := range m.ClassPath {
			entries[i] = filepath.ToSlash(p)
		}
		fmt.Fprintf(&b, "Class-Path: %s\n", strings.Join(entries, " "))
	}
	return b.String()
}

// ManifestPath returns the manifest location for a project root.
func ManifestPath(root string) string {
	return filepath.Join(root, command.ManifestFile)
}

// HasManifest reports whether root already carries a manifest.
func HasManifest(root string) bool {
	info, err := os.Stat(ManifestPath(root))
	return err == nil && !info.IsDir()
}

// WriteManifest writes m to the project root, replacing any existing manifest.
func WriteManifest(root string, m Manifest) (string, error) {
	path := ManifestPath(root)
	if err := os.WriteFile(path, []byte(m.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
