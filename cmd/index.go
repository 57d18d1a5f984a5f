package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/achen-archive/memoirsite/internal/search"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the full-text search index",
	Long:  `Indexes every transcript segment into search-index.json for the site's search page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := scanCatalog(cfg)
		if err != nil {
			return fmt.Errorf("scanning recordings: %w", err)
		}

		bar := newProgressBar(len(cat.Recordings()), "Indexing transcripts")
		idx, err := search.Build(cat, func(path string, segments int) {
			_ = bar.Add(1)
			if verbose {
				fmt.Printf("  %s: %d segments\n", path, segments)
			}
		})
		if err != nil {
			return err
		}
		_ = bar.Finish()

		if err := search.WriteFile(cfg.SearchIndexPath(), idx); err != nil {
			return err
		}
		fmt.Printf("Indexed %d segments into %s\n", len(idx.Entries), cfg.SearchIndexPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
