// Package layout computes the on-disk paths for the indexer's root
// directory: per-tag state under index/tags/, and per-provider shared
// state (global presence cache, reverse-tag shards) under
// index/providers/.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContinueIgnoreFilename is the seeded global ignore file at the root of
// the index directory.
const ContinueIgnoreFilename = ".continueignore"

// DefaultRoot returns "<home>/.continue", the conventional root when no
// override is configured.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".continue"), nil
}

// EscapeDir renders an absolute source directory as a single path
// component by stripping any leading separator and concatenating the
// remaining components.
func EscapeDir(dir string) string {
	slashed := filepath.ToSlash(dir)
	slashed = strings.TrimPrefix(slashed, "/")
	return strings.ReplaceAll(slashed, "/", "")
}

// TagDir returns the per-tag state directory for (dir, branch, provider)
// under root.
func TagDir(root, dir, branch, provider string) string {
	return filepath.Join(root, "index", "tags", EscapeDir(dir), branch, provider)
}

// ProviderDir returns the shared per-provider state directory under root.
func ProviderDir(root, provider string) string {
	return filepath.Join(root, "index", "providers", provider)
}

// TreePath returns the persisted Merkle tree path within a tag directory.
func TreePath(tagDir string) string { return filepath.Join(tagDir, "merkle_tree") }

// LastSyncPath returns the last-sync timestamp path within a tag directory.
func LastSyncPath(tagDir string) string { return filepath.Join(tagDir, ".last_sync") }

// TagIndexCachePath returns the per-tag presence cache path.
func TagIndexCachePath(tagDir string) string { return filepath.Join(tagDir, ".index_cache") }

// ProviderIndexCachePath returns the global presence cache path for a
// provider.
func ProviderIndexCachePath(providerDir string) string {
	return filepath.Join(providerDir, ".index_cache")
}

// RevTagsDir returns the reverse-tag shard directory for a provider.
func RevTagsDir(providerDir string) string { return filepath.Join(providerDir, "rev_tags") }

// TagsDBPath returns the supplemented tag-registry database path for a
// provider (see internal/tagstore).
func TagsDBPath(providerDir string) string { return filepath.Join(providerDir, "tags.db") }

// ContinueIgnorePath returns the seeded global ignore file path under
// root.
func ContinueIgnorePath(root string) string { return filepath.Join(root, ContinueIgnoreFilename) }

// LockPath returns the advisory lock file path for a provider directory.
func LockPath(providerDir string) string { return filepath.Join(providerDir, ".lock") }
