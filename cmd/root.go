// Package cmd wires the memoirsite CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "memoirsite",
	Short: "Backend for a voice memoir archive site",
	Long: `Memoirsite serves a family audio archive: recordings with synced
transcripts, chapter outlines, a life timeline, a places map, full-text
search, and a retrieval-backed chat that answers questions from the
transcripts with timestamped citations.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".memoirsite.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
