package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .memoirsite.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to memoirsite! Let's configure your archive.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"ollama", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider

	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.Model = "gpt-4o-mini"
		cfg.EmbeddingModel = "text-embedding-3-small"
	case ProviderOllama:
		cfg.Model = "gemma3:12b"
		cfg.EmbeddingModel = "nomic-embed-text"
	}

	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 2. Asset locations.
	assetsPrompt := promptui.Prompt{
		Label:   "Assets directory (recordings, places.json, ...)",
		Default: cfg.AssetsDir,
	}
	if cfg.AssetsDir, err = assetsPrompt.Run(); err != nil {
		return nil, fmt.Errorf("assets dir: %w", err)
	}

	dataPrompt := promptui.Prompt{
		Label:   "Data directory (database, vector store)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Narrator's years, for the timeline.
	birthPrompt := promptui.Prompt{
		Label:    "Narrator's birth year",
		Default:  strconv.Itoa(cfg.Timeline.BirthYear),
		Validate: validateYear,
	}
	birthStr, err := birthPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("birth year: %w", err)
	}
	cfg.Timeline.BirthYear, _ = strconv.Atoi(birthStr)

	// 4. Recording filters.
	excludePrompt := promptui.Prompt{
		Label:   "Exclude patterns (comma-separated globs, blank for none)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = splitAndTrim(excludeStr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, err
	}
	fmt.Printf("\nSaved configuration to %s\n", DefaultPath)

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		fmt.Printf("Remember to set %s before serving.\n", envVar)
	}
	return cfg, nil
}

func validateYear(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1000 || n > 9999 {
		return fmt.Errorf("enter a four-digit year")
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
