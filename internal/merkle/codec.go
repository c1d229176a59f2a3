package merkle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// record is the on-disk shape of one tree node: a line-delimited JSON
// stream, pre-order, root first. Children is nil for a blob, or the
// ordered array of child hashes for a tree.
type record struct {
	Parent   *ObjectHash   `json:"parent"`
	Hash     ObjectHash    `json:"hash"`
	Path     string        `json:"path"`
	Children *[]ObjectHash `json:"children"`
}

// Persist writes root to path as a line-delimited JSON stream, creating
// parent directories as needed. Atomicity is not required by the format;
// a straight overwrite is permitted.
func Persist(path string, root *Tree) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tree directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tree file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeNode(w, root); err != nil {
		return err
	}
	return w.Flush()
}

func writeNode(w *bufio.Writer, o Object) error {
	switch n := o.(type) {
	case *Blob:
		rec := record{Hash: n.hash, Path: n.path}
		if n.hasParent {
			p := n.parent
			rec.Parent = &p
		}
		return encodeLine(w, rec)
	case *Tree:
		hashes := n.ChildHashes()
		rec := record{Hash: n.hash, Path: n.path, Children: &hashes}
		if n.hasParent {
			p := n.parent
			rec.Parent = &p
		}
		if err := encodeLine(w, rec); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := writeNode(w, c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unrecognized object type %T", o)
	}
}

func encodeLine(w *bufio.Writer, rec record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode tree record: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// Load reads a tree persisted by Persist. If path does not exist, Load
// returns the canonical empty tree rather than an error, matching the
// TreeAbsent disposition: recovered locally, not fatal.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyTree(""), nil
		}
		return nil, fmt.Errorf("open tree file %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	obj, err := readNode(sc)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", path, err)
	}
	tree, ok := obj.(*Tree)
	if !ok {
		return nil, fmt.Errorf("load tree %s: root record is not a tree", path)
	}
	return tree, nil
}

// readNode reads and decodes exactly one node's worth of lines: the node's
// own record line, then (if it declared children) one line per child,
// recursing depth-first. A truncated stream or an unreadable record is a
// fatal CodecFailure.
func readNode(sc *bufio.Scanner) (Object, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected end of tree stream")
	}

	var rec record
	if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
		return nil, fmt.Errorf("decode tree record: %w", err)
	}

	if rec.Children == nil {
		b := &Blob{hash: rec.Hash, path: rec.Path}
		if rec.Parent != nil {
			b.parent, b.hasParent = *rec.Parent, true
		}
		return b, nil
	}

	children := make([]Object, len(*rec.Children))
	for i := range *rec.Children {
		child, err := readNode(sc)
		if err != nil {
			return nil, fmt.Errorf("child %d of %s: %w", i, rec.Path, err)
		}
		children[i] = child
	}

	t := &Tree{hash: rec.Hash, path: rec.Path, children: children}
	if rec.Parent != nil {
		t.parent, t.hasParent = *rec.Parent, true
	}
	return t, nil
}
