package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

// writeContinueIgnore creates a .continueignore file with the given
// pattern lines directly inside dir.
func writeContinueIgnore(t *testing.T, dir string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create dir %s: %v", dir, err)
	}
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	path := filepath.Join(dir, ContinueIgnoreFilename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestWorkspaceMatcherDeepestLayerWins builds a three-level hierarchy
// (seeded global, a/.continueignore, a/b/.continueignore) and asserts that
// the deepest applicable .continueignore with an opinion on a path wins
// over both shallower .continueignore layers and the global seed,
// including when that opinion is a negation re-including a path the
// global list would otherwise exclude.
func TestWorkspaceMatcherDeepestLayerWins(t *testing.T) {
	root := t.TempDir()

	// a/.continueignore re-includes important.log despite the global
	// "*.log" rule.
	writeContinueIgnore(t, filepath.Join(root, "a"), "!important.log")

	// a/b/.continueignore re-excludes everything ending in .log, overriding
	// the shallower a/.continueignore negation for anything under a/b.
	writeContinueIgnore(t, filepath.Join(root, "a", "b"), "*.log")

	seedPath := filepath.Join(t.TempDir(), "global-ignore")
	if err := os.WriteFile(seedPath, []byte("*.log\n"), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	m, err := NewWorkspaceMatcher(root, seedPath, nil)
	if err != nil {
		t.Fatalf("NewWorkspaceMatcher() error = %v", err)
	}

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{
			name: "global layer excludes a log file with no overriding layer",
			path: "file.log",
			want: true,
		},
		{
			name: "global layer leaves non-log files alone",
			path: "file.txt",
			want: false,
		},
		{
			name: "a's negation re-includes important.log, overriding the global exclude",
			path: "a/important.log",
			want: false,
		},
		{
			name: "a's negation does not affect other log files, which still fall through to global",
			path: "a/other.log",
			want: true,
		},
		{
			name: "a/b's deeper exclude wins over a's shallower negation for the same filename",
			path: "a/b/important.log",
			want: true,
		},
		{
			name: "a/b's exclude applies to any log file under it too",
			path: "a/b/other.log",
			want: true,
		},
		{
			name: "non-log files under a/b are untouched by any layer",
			path: "a/b/notes.txt",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.path, tt.isDir)
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestWorkspaceMatcherExtraPatternsJoinGlobalLayer asserts that the extra
// patterns passed to NewWorkspaceMatcher behave as part of the lowest
// priority (global) layer: a deeper .continueignore can still override
// them via negation.
func TestWorkspaceMatcherExtraPatternsJoinGlobalLayer(t *testing.T) {
	root := t.TempDir()
	writeContinueIgnore(t, filepath.Join(root, "vendor"), "!keep.bin")

	seedPath := filepath.Join(t.TempDir(), "global-ignore")
	if err := os.WriteFile(seedPath, []byte(""), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	m, err := NewWorkspaceMatcher(root, seedPath, []string{"*.bin"})
	if err != nil {
		t.Fatalf("NewWorkspaceMatcher() error = %v", err)
	}

	if !m.Match("build/output.bin", false) {
		t.Error("expected extra pattern *.bin to exclude build/output.bin via the global layer")
	}
	if m.Match("vendor/keep.bin", false) {
		t.Error("expected vendor/.continueignore negation to override the extra global pattern for keep.bin")
	}
	if !m.Match("vendor/other.bin", false) {
		t.Error("expected vendor/other.bin to still fall through to the global *.bin exclude")
	}
}

// TestWorkspaceMatcherNoContinueIgnoreFilesFallsBackToGlobal covers the
// degenerate case of a workspace with no per-directory overrides at all:
// every decision should come from the seeded global layer.
func TestWorkspaceMatcherNoContinueIgnoreFilesFallsBackToGlobal(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	seedPath := filepath.Join(t.TempDir(), "global-ignore")
	if err := os.WriteFile(seedPath, []byte("*.tmp\n"), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	m, err := NewWorkspaceMatcher(root, seedPath, nil)
	if err != nil {
		t.Fatalf("NewWorkspaceMatcher() error = %v", err)
	}

	if !m.Match("src/scratch.tmp", false) {
		t.Error("expected src/scratch.tmp to be excluded by the global layer")
	}
	if m.Match("src/main.go", false) {
		t.Error("expected src/main.go to not be excluded")
	}
}
