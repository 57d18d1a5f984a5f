package config

import "path/filepath"

// DefaultConfig returns a Config with sensible defaults: local Ollama
// models and the conventional public/ asset layout.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOllama,
		Model:             "gemma3:12b",
		EmbeddingProvider: ProviderOllama,
		EmbeddingModel:    "nomic-embed-text",
		OllamaURL:         "http://localhost:11434",
		AssetsDir:         "public",
		DataDir:           "data",
		ListenAddr:        ":8080",
		Timeline: TimelineConfig{
			SpanStart: 1900,
			SpanEnd:   1999,
			BirthYear: 1902,
		},
	}
}

// RecordingsDir is where recording folders live under the assets tree.
func (c *Config) RecordingsDir() string {
	return filepath.Join(c.AssetsDir, "recordings")
}

// SearchIndexPath is the built search index location.
func (c *Config) SearchIndexPath() string {
	return filepath.Join(c.AssetsDir, "search-index.json")
}

// TimelinePath is the built timeline location.
func (c *Config) TimelinePath() string {
	return filepath.Join(c.AssetsDir, "timeline.json")
}

// PlacesPath is the curated places file location.
func (c *Config) PlacesPath() string {
	return filepath.Join(c.AssetsDir, "places.json")
}

// ChangelogPath is the site changelog markdown location.
func (c *Config) ChangelogPath() string {
	return filepath.Join(c.AssetsDir, "changelog.md")
}

// DatabasePath is the sqlite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "memoirsite.db")
}

// VectorDir is where the persisted vector store lives.
func (c *Config) VectorDir() string {
	return filepath.Join(c.DataDir, "vectors")
}
