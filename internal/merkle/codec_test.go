package merkle

import (
	"os"
	"path/filepath"
	"testing"
)

func treesEqual(a, b Object) bool {
	if a.Hash() != b.Hash() || a.Path() != b.Path() {
		return false
	}
	aTree, aIsTree := a.(*Tree)
	bTree, bIsTree := b.(*Tree)
	if aIsTree != bIsTree {
		return false
	}
	if !aIsTree {
		return true
	}
	if len(aTree.Children()) != len(bTree.Children()) {
		return false
	}
	for i := range aTree.Children() {
		if !treesEqual(aTree.Children()[i], bTree.Children()[i]) {
			return false
		}
	}
	return true
}

func TestPersistLoadRoundTrip(t *testing.T) {
	root := writeWorkspace(t, scenarioAFiles())
	tree, err := BuildTree(root, nil)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	treePath := filepath.Join(t.TempDir(), "merkle_tree")
	if err := Persist(treePath, tree); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded, err := Load(treePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !treesEqual(tree, loaded) {
		t.Fatalf("loaded tree does not match persisted tree")
	}
}

func TestLoadMissingFileYieldsEmptyTree(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	tree, err := Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tree.Hash() != TreeHash(nil) {
		t.Fatalf("expected empty tree hash for missing file")
	}
	if len(tree.Children()) != 0 {
		t.Fatalf("expected no children for missing file")
	}
}

func TestLoadTruncatedStreamFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merkle_tree")
	// A tree record claiming one child but with no following line.
	content := `{"parent":null,"hash":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"path":"root","children":[[1,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]]}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write truncated stream: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error loading a truncated tree stream")
	}
}
