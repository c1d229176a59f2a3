// Package treecmd provides the "tree" command, which builds a directory's
// Merkle tree and prints its root hash, in the spirit of the teacher
// repo's "hash" command generalized to the spec's per-node tree.
package treecmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsidx/wsidx/internal/cmd"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/internal/merkle"
)

var treeCmd = &cobra.Command{
	Use:   "tree <dir>",
	Short: "Build a directory's Merkle tree and print its root hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		dir := args[0]
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve directory %q: %w", dir, err)
		}

		excludePatterns, err := c.Flags().GetStringArray("exclude")
		if err != nil {
			excludePatterns = []string{}
		}
		persistPath, err := c.Flags().GetString("persist")
		if err != nil {
			persistPath = ""
		}

		log := logger.With("dir", absDir, "command", "tree")
		cfg := cmd.Config()

		matcher, err := cmd.BuildMatcher(absDir, cfg, excludePatterns)
		if err != nil {
			log.Error("failed to build ignore matcher", "error", err)
			return fmt.Errorf("build ignore matcher: %w", err)
		}

		log.Info("building tree")
		start := time.Now()

		tree, err := merkle.BuildTree(absDir, matcher)
		if err != nil {
			log.Error("build tree failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("build tree for %s: %w", absDir, err)
		}

		log.Info("tree built", "duration", time.Since(start), "hash", tree.Hash().String())

		if persistPath != "" {
			if err := merkle.Persist(persistPath, tree); err != nil {
				log.Error("failed to persist tree", "error", err)
				return fmt.Errorf("persist tree to %s: %w", persistPath, err)
			}
		}

		if _, err := fmt.Fprintf(c.OutOrStdout(), "%s  %s\n", tree.Hash().String(), absDir); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	},
}

func init() {
	treeCmd.Flags().StringArrayP("exclude", "e", []string{}, "Extra ignore glob. Can be specified multiple times.")
	treeCmd.Flags().StringP("persist", "p", "", "Persist the built tree to this JSONL file (for later use with 'wsidx diff').")
	cmd.Register(treeCmd)
}
