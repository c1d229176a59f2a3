package synccmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wsidx/wsidx/internal/cmd"
	"github.com/wsidx/wsidx/internal/logger"
)

func init() {
	logger.Init("error", "text", io.Discard)
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSyncCommandPrintsComputeStream(t *testing.T) {
	t.Setenv("WSIDX_INDEX_ROOT", t.TempDir())
	dir := writeWorkspace(t)

	root := cmd.GetRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"sync", dir, "main", "p"})

	if err := root.Execute(); err != nil {
		t.Fatalf("sync command error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "compute\t") {
		t.Errorf("expected a compute line in output, got %q", out)
	}
	if !strings.Contains(out, "a.txt") {
		t.Errorf("expected a.txt to be reported, got %q", out)
	}
}

func TestSyncCommandSecondRunIsIdempotent(t *testing.T) {
	t.Setenv("WSIDX_INDEX_ROOT", t.TempDir())
	dir := writeWorkspace(t)
	root := cmd.GetRootCmd()

	root.SetOut(io.Discard)
	root.SetArgs([]string{"sync", dir, "main", "p"})
	if err := root.Execute(); err != nil {
		t.Fatalf("first sync error = %v", err)
	}

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"sync", dir, "main", "p"})
	if err := root.Execute(); err != nil {
		t.Fatalf("second sync error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("expected no output on an unchanged re-sync, got %q", buf.String())
	}
}
