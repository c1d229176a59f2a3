// Package sync implements the sync orchestrator (C8): it loads the
// previous Merkle tree for a tag, computes the current one, diffs them,
// and classifies the diff's blobs into the four output streams consumers
// act on: compute, delete, add_label, remove_label.
package sync

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wsidx/wsidx/internal/diskset"
	"github.com/wsidx/wsidx/internal/ignore"
	"github.com/wsidx/wsidx/internal/layout"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/internal/merkle"
	"github.com/wsidx/wsidx/internal/revtags"
	"github.com/wsidx/wsidx/internal/tagstore"
)

// Tag names one logical index view: a directory, a branch, and a
// provider id. Its canonical string form is "dir::branch::provider".
type Tag struct {
	Dir      string
	Branch   string
	Provider string
}

// String renders the tag's canonical form.
func (t Tag) String() string {
	return t.Dir + "::" + t.Branch + "::" + t.Provider
}

// PathHash is one entry of an output stream: a file path paired with its
// hex-encoded content hash.
type PathHash struct {
	Path string
	Hash string
}

// Result holds the four output streams of one sync call. Consumers must
// treat all four as a single atomic set.
type Result struct {
	Compute     []PathHash
	Delete      []PathHash
	AddLabel    []PathHash
	RemoveLabel []PathHash
}

// Sync runs one incremental sync for tag against its directory, rooted
// under indexRoot (see internal/layout). matcher filters the directory
// walk; pass nil to use only the global ignore policy.
func Sync(indexRoot string, tag Tag, matcher ignore.Matcher) (Result, error) {
	correlationID := uuid.New().String()
	log := logger.With("sync_id", correlationID, "tag", tag.String())
	log.Info("sync starting")

	tagDir := layout.TagDir(indexRoot, tag.Dir, tag.Branch, tag.Provider)
	providerDir := layout.ProviderDir(indexRoot, tag.Provider)

	if err := os.MkdirAll(tagDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure tag directory %s: %w", tagDir, err)
	}
	if err := os.MkdirAll(providerDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure provider directory %s: %w", providerDir, err)
	}

	unlock, err := acquireProviderLock(providerDir)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("failed to release provider lock", "error", err)
		}
	}()

	treePath := layout.TreePath(tagDir)
	oldTree, err := merkle.Load(treePath)
	if err != nil {
		return Result{}, fmt.Errorf("load previous tree: %w", err)
	}

	if matcher == nil {
		matcher = ignore.NewPatternMatcher(ignore.GlobalPatterns)
	}
	newTree, err := merkle.BuildTree(tag.Dir, matcher)
	if err != nil {
		return Result{}, fmt.Errorf("build tree for %s: %w", tag.Dir, err)
	}

	if err := writeLastSync(layout.LastSyncPath(tagDir)); err != nil {
		return Result{}, err
	}

	// The new tree is persisted before any cache mutation, so a crash
	// between here and the classification loop below leaves on-disk state
	// that the next sync's diff will reconcile from.
	if err := merkle.Persist(treePath, newTree); err != nil {
		return Result{}, fmt.Errorf("persist tree: %w", err)
	}

	add, remove := merkle.DiffTrees(oldTree, newTree)
	log.Debug("diff computed", "add", len(add), "remove", len(remove))

	tagCache, err := diskset.Open(layout.TagIndexCachePath(tagDir))
	if err != nil {
		return Result{}, fmt.Errorf("open tag presence cache: %w", err)
	}
	defer tagCache.Close()

	globalCache, err := diskset.Open(layout.ProviderIndexCachePath(providerDir))
	if err != nil {
		return Result{}, fmt.Errorf("open global presence cache: %w", err)
	}
	defer globalCache.Close()

	revStore, err := revtags.Open(layout.RevTagsDir(providerDir))
	if err != nil {
		return Result{}, fmt.Errorf("open reverse-tag store: %w", err)
	}

	var result Result
	tagStr := tag.String()
	// computed holds hashes sent to compute earlier in this same sync, so
	// every path whose content was new to the provider when the sync began
	// lands in compute, even when several paths share that content.
	computed := make(map[merkle.ObjectHash]bool)

	for _, desc := range add {
		if !desc.IsBlob {
			continue
		}
		item := diskset.Item(desc.Hash)
		hexHash := desc.Hash.String()

		inGlobal, err := globalCache.Contains(item)
		if err != nil {
			return Result{}, fmt.Errorf("check global presence for %s: %w", hexHash, err)
		}
		if inGlobal && !computed[desc.Hash] {
			result.AddLabel = append(result.AddLabel, PathHash{Path: desc.Path, Hash: hexHash})
		} else {
			result.Compute = append(result.Compute, PathHash{Path: desc.Path, Hash: hexHash})
			computed[desc.Hash] = true
		}

		if err := globalCache.Add(item); err != nil {
			return Result{}, fmt.Errorf("register %s in global cache: %w", hexHash, err)
		}
		if err := tagCache.Add(item); err != nil {
			return Result{}, fmt.Errorf("register %s in tag cache: %w", hexHash, err)
		}
		if err := revStore.Add(hexHash, tagStr); err != nil {
			return Result{}, fmt.Errorf("register %s in reverse-tag store: %w", hexHash, err)
		}
	}

	for _, desc := range remove {
		if !desc.IsBlob {
			continue
		}
		item := diskset.Item(desc.Hash)
		hexHash := desc.Hash.String()

		holders, err := revStore.Get(hexHash)
		if err != nil {
			return Result{}, fmt.Errorf("read holders of %s: %w", hexHash, err)
		}

		if len(holders) <= 1 {
			result.Delete = append(result.Delete, PathHash{Path: desc.Path, Hash: hexHash})
			if err := globalCache.Remove(item); err != nil {
				return Result{}, fmt.Errorf("evict %s from global cache: %w", hexHash, err)
			}
			if err := tagCache.Remove(item); err != nil {
				return Result{}, fmt.Errorf("evict %s from tag cache: %w", hexHash, err)
			}
			if err := revStore.RemoveGlobal(hexHash); err != nil {
				return Result{}, fmt.Errorf("drop reverse-tag entry for %s: %w", hexHash, err)
			}
			continue
		}

		result.RemoveLabel = append(result.RemoveLabel, PathHash{Path: desc.Path, Hash: hexHash})
		if err := tagCache.Remove(item); err != nil {
			return Result{}, fmt.Errorf("unlabel %s from tag cache: %w", hexHash, err)
		}
		if err := revStore.RemoveLocal(hexHash, tagStr); err != nil {
			return Result{}, fmt.Errorf("remove %s from reverse-tag entry: %w", hexHash, err)
		}
	}

	log.Info("sync finished",
		"compute", len(result.Compute),
		"delete", len(result.Delete),
		"add_label", len(result.AddLabel),
		"remove_label", len(result.RemoveLabel),
	)

	// Recorded last, after the four streams are final, so a failed sync
	// never registers a tag that wasn't actually completed.
	if err := recordTag(providerDir, tag); err != nil {
		return Result{}, err
	}

	return result, nil
}

// recordTag durably registers tag as synced in the supplemented tag
// registry (internal/tagstore). Nothing in the core classification logic
// above reads from this registry; it exists purely so a caller can later
// answer "what's indexed" without re-deriving it from index/tags/ on disk.
func recordTag(providerDir string, tag Tag) error {
	store, err := tagstore.Open(layout.TagsDBPath(providerDir))
	if err != nil {
		return fmt.Errorf("open tag registry: %w", err)
	}
	defer store.Close()

	if err := store.Record(tag.Provider, tag.String(), time.Now().Unix()); err != nil {
		return fmt.Errorf("record tag %s: %w", tag.String(), err)
	}
	return nil
}

func writeLastSync(path string) error {
	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	if err := os.WriteFile(path, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("write last-sync timestamp %s: %w", path, err)
	}
	return nil
}
