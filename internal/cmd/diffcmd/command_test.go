package diffcmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wsidx/wsidx/internal/cmd"
	_ "github.com/wsidx/wsidx/internal/cmd/treecmd"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/internal/merkle"
)

func init() {
	logger.Init("error", "text", io.Discard)
}

func TestDiffCommandAgainstAbsentTreeFileReportsEverythingAdded(t *testing.T) {
	t.Setenv("WSIDX_INDEX_ROOT", t.TempDir())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	missingTreeFile := filepath.Join(t.TempDir(), "does-not-exist.jsonl")

	root := cmd.GetRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"diff", dir, missingTreeFile})

	if err := root.Execute(); err != nil {
		t.Fatalf("diff command error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "+ ") {
		t.Errorf("expected additions against an absent tree file, got %q", out)
	}
	// An absent tree file loads as the empty tree, whose root is the only
	// object removed.
	emptyRoot := "- " + merkle.TreeHash(nil).String()
	if strings.Count(out, "- ") != 1 || !strings.Contains(out, emptyRoot) {
		t.Errorf("expected the empty root as the only removal against an absent tree file, got %q", out)
	}
}

func TestDiffCommandAgainstPersistedTreeIsEmptyWhenUnchanged(t *testing.T) {
	t.Setenv("WSIDX_INDEX_ROOT", t.TempDir())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	treeFile := filepath.Join(t.TempDir(), "tree.jsonl")

	root := cmd.GetRootCmd()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"tree", dir, "--persist", treeFile})
	if err := root.Execute(); err != nil {
		t.Fatalf("tree command error = %v", err)
	}

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"diff", dir, treeFile})
	if err := root.Execute(); err != nil {
		t.Fatalf("diff command error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no diff against an unchanged persisted tree, got %q", buf.String())
	}
}
