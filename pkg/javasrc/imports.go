// Package javasrc extracts the little the planner needs from source text:
// import declarations, symbol names derived from paths, and entry points.
//
// Matching is lexical. A line is an import if, once trimmed, it starts with
// the import keyword; multi-line imports, commented-out imports and imports
// inside string literals are not told apart.
package javasrc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	importKeyword = "import"
	terminator    = ";"
	// WildcardMarker replaces the last symbol segment in on-demand imports.
	WildcardMarker = "*"
	// Separator joins symbol segments.
	Separator = "."
)

// ImportRef is one declared import.
type ImportRef struct {
	Symbol   string // e.g. "pkg.A" or "pkg.*"
	Static   bool   // "import static ..."
	Wildcard bool   // Symbol ends with ".*"
}

// Package returns the package part of a wildcard import, e.g. "pkg" for "pkg.*".
func (r ImportRef) Package() string {
	if !r.Wildcard {
		return PackageOf(r.Symbol)
	}
	return strings.TrimSuffix(r.Symbol, Separator+WildcardMarker)
}

// ParseImports reads import declarations from r, one per line.
func ParseImports(r io.Reader) ([]ImportRef, error) {
	var refs []ImportRef

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ref, ok := ParseImportLine(scanner.Text()); ok {
			refs = append(refs, ref)
		}
	}
	if err := scanner.Err(); err != nil {
		return refs, err
	}
	return refs, nil
}

// ParseImportLine returns the import declared on line, if any. The symbol is
// the text between the keyword and the statement terminator.
func ParseImportLine(line string) (ImportRef, bool) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, importKeyword)
	if !ok || rest == "" {
		return ImportRef{}, false
	}
	// "importer = x;" is not an import: the keyword must stand alone
	if c := rest[0]; c != ' ' && c != '\t' {
		return ImportRef{}, false
	}

	if i := strings.Index(rest, terminator); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)

	ref := ImportRef{}
	if after, ok := strings.CutPrefix(rest, "static "); ok {
		ref.Static = true
		rest = strings.TrimSpace(after)
	}
	if rest == "" {
		return ImportRef{}, false
	}

	ref.Symbol = rest
	ref.Wildcard = strings.HasSuffix(rest, Separator+WildcardMarker)
	return ref, true
}

// Imports reads the import declarations of the file at path.
func Imports(path string) ([]ImportRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	refs, err := ParseImports(f)
	if err != nil {
		return refs, fmt.Errorf("scanning %s: %w", path, err)
	}
	return refs, nil
}

// Symbol derives the fully-qualified symbol of a source file: its path
// relative to root with separators mapped to "." and the extension removed.
// Files outside root map to their bare name.
func Symbol(root, path string) string {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", Separator)
}

// PackageOf returns the package part of a symbol, empty for the default package.
func PackageOf(symbol string) string {
	if i := strings.LastIndex(symbol, Separator); i >= 0 {
		return symbol[:i]
	}
	return ""
}

// WildcardOf returns the on-demand import form covering symbol, e.g.
// "pkg.*" for "pkg.A". Symbols in the default package have no wildcard form.
func WildcardOf(symbol string) string {
	pkg := PackageOf(symbol)
	if pkg == "" {
		return ""
	}
	return pkg + Separator + WildcardMarker
}
