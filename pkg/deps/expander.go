package deps

import (
	"context"

	"github.com/ritzau/javabuild/pkg/logging"
	"github.com/ritzau/javabuild/pkg/model"
)

// Expander grows a stale set with the files that import its members.
//
// With model.ExpansionShallow only direct importers of the initially stale
// files are added; files added this way are not expanded again, so a file
// two import hops away from a change is not recompiled. This matches the
// established behaviour of the tool. model.ExpansionTransitive repeats the
// expansion until no new file is added.
type Expander struct {
	Policy model.ExpansionPolicy
}

// Expand returns a new set holding stale plus its dependents in idx.
// stale itself is not modified.
func (e Expander) Expand(ctx context.Context, idx *Index, stale *model.FileSet) *model.FileSet {
	result := stale.Clone()

	switch e.Policy {
	case model.ExpansionTransitive:
		queue := stale.Sorted()
		for len(queue) > 0 {
			if ctx.Err() != nil {
				break
			}
			next := queue[0]
			queue = queue[1:]
			for _, dep := range idx.Graph.Dependents(next) {
				if result.Add(dep) {
					queue = append(queue, dep)
				}
			}
		}
	default:
		for _, path := range stale.Sorted() {
			for _, dep := range idx.Graph.Dependents(path) {
				result.Add(dep)
			}
		}
	}

	logging.DebugContext(ctx, "expanded stale set",
		"policy", string(e.policy()),
		"stale", stale.Len(),
		"total", result.Len(),
	)
	return result
}

func (e Expander) policy() model.ExpansionPolicy {
	if e.Policy == "" {
		return model.ExpansionShallow
	}
	return e.Policy
}

// Expand indexes candidates below sourceRoot and expands stale with the given policy.
func Expand(ctx context.Context, sourceRoot string, stale *model.FileSet, candidates []string, policy model.ExpansionPolicy) *model.FileSet {
	return Expander{Policy: policy}.Expand(ctx, BuildIndex(ctx, sourceRoot, candidates), stale)
}
