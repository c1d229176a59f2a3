// Package synccmd provides the "sync" command, which runs one incremental
// sync for a workspace tag and prints the four classification streams.
package synccmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsidx/wsidx/internal/cmd"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync <dir> <branch> [provider]",
	Short: "Run one incremental sync for a workspace tag",
	Long: `Run one incremental sync for a (dir, branch, provider) tag: build the
current Merkle tree, diff it against the tree persisted from the tag's
last sync, and classify the result into four streams: compute (new
content, never indexed by any tag), add_label (content already indexed
under another tag), delete (content with no remaining tag holders), and
remove_label (content still held by at least one other tag). provider
defaults to the configured default_provider when omitted.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(c *cobra.Command, args []string) error {
		cfg := cmd.Config()

		dir, branch := args[0], args[1]
		provider := cfg.DefaultProvider
		if len(args) == 3 {
			provider = args[2]
		}

		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve directory %q: %w", dir, err)
		}

		excludePatterns, err := c.Flags().GetStringArray("exclude")
		if err != nil {
			excludePatterns = []string{}
		}

		log := logger.With("dir", absDir, "branch", branch, "provider", provider, "command", "sync")

		matcher, err := cmd.BuildMatcher(absDir, cfg, excludePatterns)
		if err != nil {
			log.Error("failed to build ignore matcher", "error", err)
			return fmt.Errorf("build ignore matcher: %w", err)
		}

		tag := sync.Tag{Dir: absDir, Branch: branch, Provider: provider}

		log.Info("sync starting")
		start := time.Now()

		result, err := sync.Sync(cfg.IndexRoot, tag, matcher)
		if err != nil {
			log.Error("sync failed", "error", err, "duration", time.Since(start))
			return err
		}

		log.Info("sync completed",
			"duration", time.Since(start),
			"compute", len(result.Compute),
			"delete", len(result.Delete),
			"add_label", len(result.AddLabel),
			"remove_label", len(result.RemoveLabel),
		)

		out := c.OutOrStdout()
		printStream(out, "compute", result.Compute)
		printStream(out, "delete", result.Delete)
		printStream(out, "add_label", result.AddLabel)
		printStream(out, "remove_label", result.RemoveLabel)

		return nil
	},
}

func printStream(w io.Writer, name string, entries []sync.PathHash) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, e.Hash, e.Path)
	}
}

func init() {
	syncCmd.Flags().StringArrayP("exclude", "e", []string{}, "Extra ignore glob (e.g. 'node_modules', '*.generated.go'). Can be specified multiple times.")
	cmd.Register(syncCmd)
}
