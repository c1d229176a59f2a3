package merkle

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/wsidx/wsidx/internal/ignore"
)

// Entry is one node yielded by Walk: an absolute path and whether it names
// a directory.
type Entry struct {
	Path  string
	IsDir bool
}

// Walk returns a lazy, pull-based, pre-order, name-sorted sequence of
// entries rooted at dir, filtered by matcher. The first entry is dir
// itself. The sequence stops (and the final yielded error is non-nil) as
// soon as a directory cannot be read, matching the WalkerEntryFailure
// disposition: fatal, surfaced to the caller.
//
// The builder (C3) drives this sequence directly; Walk holds at most one
// directory listing per level of the current path, bounding memory to
// traversal depth rather than workspace width.
func Walk(dir string, matcher ignore.Matcher) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if matcher == nil {
			matcher = noOpIgnore{}
		}
		if !yield(Entry{Path: dir, IsDir: true}, nil) {
			return
		}
		walkDir(dir, dir, matcher, yield)
	}
}

// walkDir recursively yields entries under current (an absolute path),
// relative to root for ignore-matching purposes. It returns false once the
// consumer has signaled it wants no more entries.
func walkDir(root, current string, matcher ignore.Matcher, yield func(Entry, error) bool) bool {
	entries, err := os.ReadDir(current)
	if err != nil {
		yield(Entry{}, fmt.Errorf("read dir %s: %w", current, err))
		return false
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)

	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		byName[e.Name()] = e
	}

	for _, name := range names {
		e := byName[name]
		childPath := filepath.Join(current, name)

		rel, err := filepath.Rel(root, childPath)
		if err != nil {
			rel = childPath
		}

		isDir := e.IsDir()
		if matcher.Match(rel, isDir) {
			continue
		}

		if !yield(Entry{Path: childPath, IsDir: isDir}, nil) {
			return false
		}

		if isDir {
			if !walkDir(root, childPath, matcher, yield) {
				return false
			}
		}
	}

	return true
}

// noOpIgnore excludes nothing; used when Walk is called without a matcher.
type noOpIgnore struct{}

func (noOpIgnore) Match(path string, isDir bool) bool { return false }
