package ignore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wsidx/wsidx/internal/logger"
)

// ContinueIgnoreFilename is the per-directory override file consulted while
// walking a workspace; it has the same glob semantics as GlobalPatterns.
const ContinueIgnoreFilename = ".continueignore"

// GlobalPatterns is the built-in ignore-glob policy a conforming walker
// seeds by default: binary media, archives, native build artifacts,
// lockfiles/caches, VCS/editor state, secrets/state, fonts, and misc
// generated files.
var GlobalPatterns = []string{
	// binary media
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.ico", "*.pdf",
	"*.mp3", "*.mp4", "*.mov", "*.mkv", "*.webm", "*.avi", "*.mpg", "*.mpeg",
	// archives
	"*.zip", "*.gz", "*.tar", "*.tgz", "*.rar", "*.7z", "*.jar",
	// native artifacts
	"*.exe", "*.dll", "*.so", "*.dylib", "*.obj", "*.o", "*.a", "*.lib",
	"*.class", "*.pyc", "*.pyo", "*.whl",
	// lockfiles/caches
	"*.lock", "*.log", "**/package-lock.json", "**/node_modules/", "**/__pycache__/", "**/.pytest_cache/",
	// VCS/editor
	"**/.git", "**/.idea/", "**/.vscode/", "**/.history/", "**/.DS_Store",
	// secrets/state
	"**/.env", "*.pem", "*.cert", "*.key", "*.csr", "*.db", "*.sqlite", "*.sqlite3",
	// fonts
	"*.ttf", "*.woff", "*.woff2", "*.eot", "*.cur",
	// misc
	"*.onnx", "*.tmp", "*.swp", "*.bak", "*.dmp", "*.parquet",
}

// SeedGlobalIgnoreFile writes GlobalPatterns to seedPath if it does not
// already exist, creating parent directories as needed. It is a no-op if
// the file is already present, matching the "seeded... on first use"
// contract in the root directory layout.
func SeedGlobalIgnoreFile(seedPath string) error {
	if _, err := os.Stat(seedPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if dir := filepath.Dir(seedPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var b strings.Builder
	for _, p := range GlobalPatterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return os.WriteFile(seedPath, []byte(b.String()), 0o644)
}

// WorkspaceMatcher layers a global pattern set (lowest priority) with
// per-directory ".continueignore" overrides discovered under a root
// directory (highest priority the deeper the override file lives).
type WorkspaceMatcher struct {
	rootDir string
	global  *PatternMatcher
	// layers maps a directory (relative to rootDir, "" for rootDir itself)
	// to the matcher built from the .continueignore found directly in it.
	layers map[string]*PatternMatcher
	// order holds layer keys from deepest to shallowest so Match can stop
	// at the first layer with an opinion.
	order []string
}

// NewWorkspaceMatcher scans rootDir for ".continueignore" files, seeds (or
// reads) seedPath's global pattern list, and returns a Matcher combining
// both with extra (e.g. CLI --exclude flags or internal/config overrides).
// extra behaves as an additional always-active, lowest-priority layer.
func NewWorkspaceMatcher(rootDir, seedPath string, extra []string) (Matcher, error) {
	if err := SeedGlobalIgnoreFile(seedPath); err != nil {
		return nil, err
	}

	seeded, err := readPatternFile(seedPath)
	if err != nil {
		return nil, err
	}

	globalPatterns := make([]string, 0, len(seeded)+len(extra))
	globalPatterns = append(globalPatterns, seeded...)
	globalPatterns = append(globalPatterns, extra...)

	wm := &WorkspaceMatcher{
		rootDir: rootDir,
		global:  NewPatternMatcher(globalPatterns),
		layers:  make(map[string]*PatternMatcher),
	}

	var dirs []string
	err = filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// A directory we can't stat is not fatal to matcher construction;
			// the walker proper will surface I/O errors for paths it visits.
			logger.Debug("skipping unreadable entry while scanning for continueignore", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		ignorePath := filepath.Join(path, ContinueIgnoreFilename)
		patterns, err := readPatternFile(ignorePath)
		if err != nil {
			return err
		}
		if len(patterns) == 0 {
			return nil
		}
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			rel = path
		}
		if rel == "." {
			rel = ""
		}
		wm.layers[rel] = NewPatternMatcher(patterns)
		dirs = append(dirs, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deepest directories (longest relative path) take precedence.
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i]) > len(dirs[j])
	})
	wm.order = dirs

	return wm, nil
}

// Match reports whether path (relative to rootDir) should be excluded.
// Layers are consulted from the deepest applicable ".continueignore" up to
// the root, then the seeded global list; the first layer with an opinion
// (a matching inclusion or negation pattern) wins.
func (wm *WorkspaceMatcher) Match(path string, isDir bool) bool {
	relDir := filepath.Dir(filepath.ToSlash(path))
	if relDir == "." {
		relDir = ""
	}

	for _, layerDir := range wm.order {
		if !isAncestorOrSelf(layerDir, relDir) {
			continue
		}
		if pm, ok := wm.layers[layerDir]; ok {
			if matched, decided := pm.match(path, isDir); decided {
				return matched
			}
		}
	}

	return wm.global.Match(path, isDir)
}

// isAncestorOrSelf reports whether dir is relDir or an ancestor directory of it.
func isAncestorOrSelf(dir, relDir string) bool {
	if dir == "" {
		return true
	}
	if dir == relDir {
		return true
	}
	return strings.HasPrefix(relDir, dir+"/")
}
