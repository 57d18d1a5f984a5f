package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/achen-archive/memoirsite/internal/places"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Rescan transcripts for mentions of known places",
	Long: `Scans every transcript for the places already curated in
places.json (names and aliases) and records new mentions with their
timestamps and surrounding context. The curated place list itself is
never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := scanCatalog(cfg)
		if err != nil {
			return fmt.Errorf("scanning recordings: %w", err)
		}

		f, err := places.LoadFile(cfg.PlacesPath())
		if err != nil {
			return err
		}
		if len(f.Places) == 0 {
			return fmt.Errorf("no curated places in %s; add places before scanning", cfg.PlacesPath())
		}

		result, err := places.Scan(cat, f, func(path string, found int) {
			if verbose {
				fmt.Printf("  %s: %d new mentions\n", path, found)
			}
		})
		if err != nil {
			return err
		}

		if err := places.WriteFile(cfg.PlacesPath(), f); err != nil {
			return err
		}
		fmt.Printf("Scanned %d recordings, added %d new mentions across %d places\n",
			result.Recordings, result.NewMentions, len(f.Places))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(placesCmd)
}
