package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// TimelineConfig tunes year extraction and timeline building for the
// narrator's lifespan.
type TimelineConfig struct {
	// SpanStart/SpanEnd bound how abbreviated years ('47) resolve.
	SpanStart int `yaml:"span_start" koanf:"span_start"`
	SpanEnd   int `yaml:"span_end" koanf:"span_end"`
	// BirthYear lets timeline entries show ages alongside years.
	BirthYear int `yaml:"birth_year" koanf:"birth_year"`
}

// Config is the top-level memoirsite configuration, corresponding to
// .memoirsite.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaURL         string       `yaml:"ollama_url" koanf:"ollama_url"`

	// AssetsDir is the public asset tree: recordings/, places.json,
	// timeline.json, search-index.json, changelog.md.
	AssetsDir string `yaml:"assets_dir" koanf:"assets_dir"`
	// DataDir holds server-private state: the sqlite database and the
	// persisted vector store.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	ListenAddr      string `yaml:"listen_addr" koanf:"listen_addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	// Include/Exclude filter which recordings are picked up by the
	// scanner (doublestar globs against recording paths).
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	Timeline TimelineConfig `yaml:"timeline" koanf:"timeline"`
}
