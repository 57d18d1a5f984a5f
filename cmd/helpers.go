package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/achen-archive/memoirsite/internal/catalog"
	"github.com/achen-archive/memoirsite/internal/config"
	"github.com/achen-archive/memoirsite/internal/embeddings"
	"github.com/achen-archive/memoirsite/internal/llm"
)

// embedRetries covers transient failures against local Ollama or rate
// limits against OpenAI during bulk ingest.
const embedRetries = 3

// loadConfig loads and validates the config, providing a friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `memoirsite init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// scanCatalog discovers recordings per the configured filters.
func scanCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Scan(cfg.RecordingsDir(), catalog.ScanOptions{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
}

// createEmbedderFromConfig creates an embeddings.Embedder based on
// config, wrapped with retries for bulk work.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	var inner embeddings.Embedder
	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		inner = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))
	case config.ProviderOllama:
		inner = embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.OllamaURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
	return embeddings.WithRetries(inner, embedRetries), nil
}

// newProgressBar returns the bar used by the long-running build commands.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// createProviderFromConfig creates the chat LLM provider.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return llm.NewOpenAIProvider(apiKey, cfg.Model), nil
	case config.ProviderOllama:
		return llm.NewOllamaProvider(cfg.OllamaURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
