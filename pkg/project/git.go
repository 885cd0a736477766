package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/ritzau/javabuild/pkg/logging"
)

// IsRemote reports whether src names a git repository to clone rather than
// a local path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "git@") || strings.Contains(src, "://")
}

// RepositoryName derives the lib directory name from a repository URL,
// e.g. https://host/org/gson.git -> gson.
func RepositoryName(url string) string {
	name := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// cloneDependency clones the tip of url into libDir/<name>/ and drops the
// repository metadata, leaving the same layout a copied directory has.
func cloneDependency(ctx context.Context, libDir, url string) (string, error) {
	name := RepositoryName(url)
	if name == "" {
		return "", fmt.Errorf("cannot derive a dependency name from %q", url)
	}
	dest := filepath.Join(libDir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, fmt.Errorf("%s: %w", dest, ErrDependencyExists)
	}

	logging.DebugContext(ctx, "cloning dependency", "url", url, "path", dest)
	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}

	if head, err := repo.Head(); err == nil {
		logging.InfoContext(ctx, "dependency cloned", "url", url, "commit", head.Hash().String()[:8], "path", dest)
	}
	if err := os.RemoveAll(filepath.Join(dest, git.GitDirName)); err != nil {
		return "", fmt.Errorf("failed to remove repository metadata: %w", err)
	}
	return dest, nil
}
