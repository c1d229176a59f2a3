package cmd

import (
	"github.com/wsidx/wsidx/internal/config"
	"github.com/wsidx/wsidx/internal/ignore"
	"github.com/wsidx/wsidx/internal/layout"
)

// BuildMatcher constructs the ignore.Matcher every directory-walking
// subcommand (sync, tree, diff) uses: the seeded global glob list plus any
// ".continueignore" files found under dir, layered with cfg's
// ExtraIgnoreGlobs and the command's own --exclude flags, both treated as
// an always-active, lowest-priority layer.
func BuildMatcher(dir string, cfg *config.Config, excludeFlags []string) (ignore.Matcher, error) {
	seedPath := layout.ContinueIgnorePath(cfg.IndexRoot)

	extra := make([]string, 0, len(cfg.ExtraIgnoreGlobs)+len(excludeFlags))
	extra = append(extra, cfg.ExtraIgnoreGlobs...)
	extra = append(extra, excludeFlags...)

	return ignore.NewWorkspaceMatcher(dir, seedPath, extra)
}
