// Package tagscmd provides the "tags" command group: supplemented,
// non-core operator tooling for querying and editing the durable tag
// registry (internal/tagstore) that Sync maintains as bookkeeping.
package tagscmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsidx/wsidx/internal/cmd"
	"github.com/wsidx/wsidx/internal/layout"
	"github.com/wsidx/wsidx/internal/logger"
	"github.com/wsidx/wsidx/internal/sync"
	"github.com/wsidx/wsidx/internal/tagstore"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Query or edit the durable tag registry",
}

var tagsListCmd = &cobra.Command{
	Use:   "list [provider]",
	Short: "List every tag ever synced for a provider",
	Long:  `provider defaults to the configured default_provider when omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg := cmd.Config()
		provider := cfg.DefaultProvider
		if len(args) == 1 {
			provider = args[0]
		}
		log := logger.With("provider", provider, "command", "tags list")

		providerDir := layout.ProviderDir(cfg.IndexRoot, provider)
		store, err := tagstore.Open(layout.TagsDBPath(providerDir))
		if err != nil {
			log.Error("failed to open tag registry", "error", err)
			return fmt.Errorf("open tag registry: %w", err)
		}
		defer store.Close()

		tags, err := store.List(provider)
		if err != nil {
			log.Error("failed to list tags", "error", err)
			return fmt.Errorf("list tags: %w", err)
		}

		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)

		out := c.OutOrStdout()
		for _, name := range names {
			ts := time.Unix(tags[name], 0).UTC().Format(time.RFC3339)
			fmt.Fprintf(out, "%s\t%s\n", name, ts)
		}
		return nil
	},
}

var tagsForgetCmd = &cobra.Command{
	Use:   "forget <dir> <branch> [provider]",
	Short: "Remove a tag from the durable registry",
	Long: `Remove a tag's entry from the durable registry (internal/tagstore). This
is operator bookkeeping only: it does not touch the tag's persisted tree,
presence caches, or reverse-tag entries on disk. provider defaults to the
configured default_provider when omitted.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(c *cobra.Command, args []string) error {
		cfg := cmd.Config()
		dir, branch := args[0], args[1]
		provider := cfg.DefaultProvider
		if len(args) == 3 {
			provider = args[2]
		}
		tag := sync.Tag{Dir: dir, Branch: branch, Provider: provider}
		log := logger.With("tag", tag.String(), "command", "tags forget")

		providerDir := layout.ProviderDir(cfg.IndexRoot, provider)
		store, err := tagstore.Open(layout.TagsDBPath(providerDir))
		if err != nil {
			log.Error("failed to open tag registry", "error", err)
			return fmt.Errorf("open tag registry: %w", err)
		}
		defer store.Close()

		if err := store.Forget(provider, tag.String()); err != nil {
			log.Error("failed to forget tag", "error", err)
			return fmt.Errorf("forget tag %s: %w", tag.String(), err)
		}

		log.Info("tag forgotten")
		return nil
	},
}

func init() {
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsForgetCmd)
	cmd.Register(tagsCmd)
}
