package deps

import (
	"context"

	"github.com/ritzau/javabuild/pkg/graph"
	"github.com/ritzau/javabuild/pkg/javasrc"
	"github.com/ritzau/javabuild/pkg/logging"
)

// Index resolves the import declarations of a candidate file set into an
// import graph. An import matches a file when it equals the file's
// fully-qualified symbol, or when it is the wildcard form of the file's
// package.
type Index struct {
	SourceRoot string
	Graph      *graph.ImportGraph

	bySymbol  map[string]string   // "pkg.A" -> path
	byPackage map[string][]string // "pkg" -> paths
	skipped   []string
}

// BuildIndex reads the imports of every candidate. Files that vanish or
// cannot be read are logged and skipped; they stay in the graph without
// outgoing edges. Cancelling ctx stops the scan and leaves a partial index.
func BuildIndex(ctx context.Context, sourceRoot string, candidates []string) *Index {
	idx := &Index{
		SourceRoot: sourceRoot,
		Graph:      graph.NewImportGraph(),
		bySymbol:   make(map[string]string, len(candidates)),
		byPackage:  make(map[string][]string),
	}

	for _, path := range candidates {
		symbol := javasrc.Symbol(sourceRoot, path)
		idx.Graph.AddFile(path, symbol)
		idx.bySymbol[symbol] = path
		pkg := javasrc.PackageOf(symbol)
		idx.byPackage[pkg] = append(idx.byPackage[pkg], path)
	}

	for i, path := range candidates {
		if ctx.Err() != nil {
			logging.WarnContext(ctx, "import scan interrupted", "scanned", i, "total", len(candidates))
			return idx
		}
		refs, err := javasrc.Imports(path)
		if err != nil {
			logging.WarnContext(ctx, "skipping unreadable source", "path", path, "error", err)
			idx.skipped = append(idx.skipped, path)
			continue
		}
		for _, ref := range refs {
			for _, target := range idx.resolve(ref) {
				idx.Graph.AddImport(path, target)
			}
		}
	}

	logging.DebugContext(ctx, "import index built",
		"files", len(candidates),
		"edges", len(idx.Graph.Edges()),
		"skipped", len(idx.skipped),
	)
	return idx
}

// resolve maps one import to the candidate files it names. Static imports
// name members, never a source file or package, and resolve to nothing.
func (idx *Index) resolve(ref javasrc.ImportRef) []string {
	if ref.Static {
		return nil
	}
	if ref.Wildcard {
		pkg := ref.Package()
		if pkg == "" {
			return nil
		}
		return idx.byPackage[pkg]
	}
	if path, ok := idx.bySymbol[ref.Symbol]; ok {
		return []string{path}
	}
	return nil
}

// Skipped returns the candidates whose imports could not be read
func (idx *Index) Skipped() []string {
	return idx.skipped
}
