package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/achen-archive/memoirsite/internal/timeline"
)

var timelineDryRun bool

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Build timeline.json from year mentions in the transcripts",
	Long: `Extracts every year mentioned in the transcripts, groups them into
life periods, and writes timeline.json. Period titles and descriptions
come from the configured LLM; --dry-run skips the LLM and emits
year-range placeholders.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := scanCatalog(cfg)
		if err != nil {
			return fmt.Errorf("scanning recordings: %w", err)
		}

		b := &timeline.Builder{
			Catalog:   cat,
			Model:     cfg.Model,
			SpanStart: cfg.Timeline.SpanStart,
			SpanEnd:   cfg.Timeline.SpanEnd,
			BirthYear: cfg.Timeline.BirthYear,
		}
		if !timelineDryRun {
			provider, err := createProviderFromConfig(cfg)
			if err != nil {
				return err
			}
			b.Provider = provider
		}

		f, err := b.Build(cmd.Context())
		if err != nil {
			return err
		}
		if err := timeline.WriteFile(cfg.TimelinePath(), f); err != nil {
			return err
		}

		total := 0
		for _, e := range f.Entries {
			total += len(e.Excerpts)
		}
		fmt.Printf("Wrote %d timeline entries (%d excerpts) to %s\n",
			len(f.Entries), total, cfg.TimelinePath())
		return nil
	},
}

func init() {
	timelineCmd.Flags().BoolVar(&timelineDryRun, "dry-run", false, "skip LLM descriptions")
	rootCmd.AddCommand(timelineCmd)
}
