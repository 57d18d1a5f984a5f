package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/achen-archive/memoirsite/internal/catalog"
	"github.com/achen-archive/memoirsite/internal/changelog"
	"github.com/achen-archive/memoirsite/internal/chapters"
	"github.com/achen-archive/memoirsite/internal/chat"
	"github.com/achen-archive/memoirsite/internal/config"
	"github.com/achen-archive/memoirsite/internal/db"
	"github.com/achen-archive/memoirsite/internal/places"
	"github.com/achen-archive/memoirsite/internal/progress"
	"github.com/achen-archive/memoirsite/internal/search"
	"github.com/achen-archive/memoirsite/internal/server"
	"github.com/achen-archive/memoirsite/internal/timeline"
	"github.com/achen-archive/memoirsite/internal/vectordb"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memoir site server",
	Long: `Serves the API and static assets: recordings, chapters, timeline,
places, search, playback progress, and the transcript chat. Run
` + "`memoirsite ingest`" + ` first to build the chat index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cat, err := scanCatalog(cfg)
		if err != nil {
			return fmt.Errorf("scanning recordings: %w", err)
		}
		fmt.Printf("Found %d recordings under %s\n", len(cat.Recordings()), cfg.RecordingsDir())

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Addr:      cfg.ListenAddr,
			AssetsDir: cfg.AssetsDir,
			AllowAll:  serveAllowAll || cfg.AllowAllOrigins,
		}, database)
		r := srv.Router()

		catalog.RegisterRoutes(r, cat)
		chapters.RegisterRoutes(r, cat)
		timeline.RegisterRoutes(r, cfg.TimelinePath())
		places.RegisterRoutes(r, places.NewService(cfg.PlacesPath()))
		search.RegisterRoutes(r, search.NewService(cfg.SearchIndexPath()))
		changelog.RegisterRoutes(r, changelog.NewService(cfg.ChangelogPath()))
		progress.RegisterRoutes(r, progress.NewStore(database))

		chatSvc, err := buildChatService(cmd.Context(), cfg, database)
		if err != nil {
			// Chat is the only feature needing LLM credentials; the rest
			// of the site still works without it.
			fmt.Fprintf(os.Stderr, "Warning: chat disabled: %v\n", err)
		} else {
			chat.RegisterRoutes(r, chatSvc)
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			fmt.Println("\nShutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

// buildChatService loads the persisted vector store and assembles the
// retrieval chat stack.
func buildChatService(ctx context.Context, cfg *config.Config, database *db.DB) (*chat.Service, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := store.Load(ctx, cfg.VectorDir()); err != nil {
		return nil, fmt.Errorf("loading vector store (run `memoirsite ingest` first): %w", err)
	}
	fmt.Printf("Chat index loaded: %d chunks\n", store.Count())

	retriever, err := chat.NewRetriever(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("building retriever: %w", err)
	}
	return chat.NewService(retriever, provider, cfg.Model, chat.NewHistory(database)), nil
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow any CORS origin (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
