package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/achen-archive/memoirsite/internal/chat"
	"github.com/achen-archive/memoirsite/internal/vectordb"
)

// embedBatchSize keeps individual embedding calls reasonably sized.
const embedBatchSize = 32

var ingestFresh bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk and embed all transcripts for chat retrieval",
	Long: `Slices every transcript into overlapping chunks, embeds them, and
persists the vector store. Run this after transcripts change, before
serving chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := scanCatalog(cfg)
		if err != nil {
			return fmt.Errorf("scanning recordings: %w", err)
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}
		store, err := vectordb.NewChromemStore(embedder)
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}

		if !ingestFresh {
			if err := store.Load(ctx, cfg.VectorDir()); err == nil {
				fmt.Printf("Loaded existing store (%d chunks); re-ingesting all recordings\n", store.Count())
			}
		}

		chunks, err := chat.ChunkCatalog(cat, func(path string, n int) {
			if verbose {
				fmt.Printf("  %s: %d chunks\n", path, n)
			}
		})
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return fmt.Errorf("no transcript chunks found under %s", cfg.RecordingsDir())
		}

		// Replace each recording's chunks wholesale so stale embeddings
		// never linger after a transcript correction.
		seen := map[string]bool{}
		for _, c := range chunks {
			if !seen[c.Metadata.RecordingID] {
				seen[c.Metadata.RecordingID] = true
				if err := store.DeleteByRecording(ctx, c.Metadata.RecordingID); err != nil {
					return fmt.Errorf("clearing %s: %w", c.Metadata.RecordingID, err)
				}
			}
		}

		bar := newProgressBar(len(chunks), "Embedding chunks")
		for start := 0; start < len(chunks); start += embedBatchSize {
			end := min(start+embedBatchSize, len(chunks))
			if err := store.AddChunks(ctx, chunks[start:end]); err != nil {
				return fmt.Errorf("adding chunks: %w", err)
			}
			_ = bar.Set(end)
		}
		_ = bar.Finish()

		if err := os.MkdirAll(cfg.VectorDir(), 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		if err := store.Persist(ctx, cfg.VectorDir()); err != nil {
			return fmt.Errorf("persisting vector store: %w", err)
		}

		fmt.Printf("Ingested %d chunks from %d recordings into %s\n",
			len(chunks), len(seen), cfg.VectorDir())
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFresh, "fresh", false, "discard the existing store and start over")
	rootCmd.AddCommand(ingestCmd)
}
