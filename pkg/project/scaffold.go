package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// IgnoreFile is the VCS ignore file written by Scaffold.
const IgnoreFile = ".gitignore"

// IgnorePatterns are the generated and third-party paths kept out of version control.
var IgnorePatterns = []string{
	"**bin",
	"**lib",
	"**extractionFiles",
	"**Manifesto.txt",
	"**Session.vim",
	"**.jar",
	"**.exe",
	".javabuild/",
}

// Layout names the directories of a project relative to its root.
type Layout struct {
	Root   string
	Source string
	Author string
}

// ProjectName derives a class name from the project directory name.
func ProjectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	base := filepath.Base(abs)

	var b strings.Builder
	for i, r := range base {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == '$':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "Main"
	}
	return b.String()
}

// MainClassSource returns a minimal entry point class named name.
func MainClassSource(name string) string {
	return fmt.Sprintf(`class %s {
    public static void main(String[] args) {
        System.out.println("Hello from %s");
    }
}
`, name, name)
}

// Scaffold creates the initial layout of a project: the source directory
// with a main class, the ignore file and the manifest. Existing files are
// left untouched. It returns the paths it created.
func Scaffold(l Layout) ([]string, error) {
	name := ProjectName(l.Root)
	srcDir := filepath.Join(l.Root, l.Source)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	var created []string
	write := func(path, content string) error {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		created = append(created, path)
		return nil
	}

	if err := write(filepath.Join(srcDir, name+".java"), MainClassSource(name)); err != nil {
		return created, err
	}
	if err := write(filepath.Join(l.Root, IgnoreFile), strings.Join(IgnorePatterns, "\n")+"\n"); err != nil {
		return created, err
	}
	m := Manifest{Author: l.Author, MainClass: name}
	if err := write(ManifestPath(l.Root), m.String()); err != nil {
		return created, err
	}
	return created, nil
}
