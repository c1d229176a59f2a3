package merkle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wsidx/wsidx/internal/ignore"
	"github.com/wsidx/wsidx/internal/logger"
)

// partialTree is a Tree under construction: its children accumulate as the
// walk proceeds and it is only finalized (hashed) once the walk moves past
// its subtree.
type partialTree struct {
	path     string
	children []Object
}

func finalizePartial(pt *partialTree) *Tree {
	hashes := make([]ObjectHash, len(pt.children))
	for i, c := range pt.children {
		hashes[i] = c.Hash()
	}
	return &Tree{hash: TreeHash(hashes), path: pt.path, children: pt.children}
}

// BuildTree runs the walker over root and folds the resulting entry
// sequence into a single rooted Tree via a partial-tree stack, per the
// Merkle builder algorithm: push a partial tree per directory, pop and
// finalize whenever the walk moves to a path that is no longer a
// descendant of the current directory, and collapse to one root once the
// walk ends.
//
// The produced hash is a pure function of the filtered file set and
// contents: it does not depend on wall-clock, inode numbers, or the
// absolute path to root beyond what feeds blob extensions.
func BuildTree(root string, matcher ignore.Matcher) (*Tree, error) {
	var stack []*partialTree
	currentDir := root
	first := true

	for entry, err := range Walk(root, matcher) {
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}

		if first {
			stack = append(stack, &partialTree{path: entry.Path})
			currentDir = entry.Path
			first = false
			continue
		}

		for !isDescendant(currentDir, entry.Path) {
			popped := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			finalized := finalizePartial(popped)
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, finalized)
			currentDir = filepath.Dir(currentDir)
		}

		if entry.IsDir {
			stack = append(stack, &partialTree{path: entry.Path})
			currentDir = entry.Path
			continue
		}

		blob, err := buildBlob(entry.Path)
		if err != nil {
			if errors.Is(err, ErrNotUTF8) {
				logger.Debug("skipping non-UTF-8 file", "path", entry.Path)
				continue
			}
			return nil, err
		}
		top := stack[len(stack)-1]
		top.children = append(top.children, blob)
	}

	if len(stack) == 0 {
		return EmptyTree(root), nil
	}

	for len(stack) > 1 {
		popped := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		finalized := finalizePartial(popped)
		stack[len(stack)-1].children = append(stack[len(stack)-1].children, finalized)
	}

	rootTree := finalizePartial(stack[0])
	for _, c := range rootTree.children {
		setParent(c, rootTree.hash)
	}
	return rootTree, nil
}

// buildBlob reads path and hashes its contents, per §4.1. A non-UTF-8 file
// yields ErrNotUTF8, which the builder treats as a skip rather than a
// fatal error.
func buildBlob(path string) (*Blob, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	hash, err := BlobHash(path, content)
	if err != nil {
		return nil, err
	}
	return &Blob{hash: hash, path: path}, nil
}

// isDescendant reports whether path lies strictly within dir (i.e. dir is
// an ancestor directory of path, not path itself).
func isDescendant(dir, path string) bool {
	if path == dir {
		return false
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
