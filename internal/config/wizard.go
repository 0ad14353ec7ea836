package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to campusbot! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	cfg.Provider = provider
	cfg.Model = DefaultModel(provider)
	cfg.EmbeddingProvider = provider
	cfg.EmbeddingModel = DefaultEmbeddingModel(provider)
	cfg.Generation.MaxInputTokens = DefaultMaxInputTokens(provider)

	corpusPrompt := promptui.Prompt{
		Label:   "Folder of documents to index",
		Default: cfg.Corpus.Dir,
	}
	if cfg.Corpus.Dir, err = corpusPrompt.Run(); err != nil {
		return nil, fmt.Errorf("corpus dir: %w", err)
	}
	cfg.Crawl.OutputDir = cfg.Corpus.Dir

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("port must be a number between 0 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	basePrompt := promptui.Prompt{
		Label:   "Website to crawl",
		Default: cfg.Crawl.BaseURL,
	}
	if cfg.Crawl.BaseURL, err = basePrompt.Run(); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	extPrompt := promptui.Prompt{
		Label:   "File extensions to collect (comma-separated)",
		Default: strings.Join(DefaultFileExtensions, ","),
	}
	extStr, err := extPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("file extensions: %w", err)
	}
	cfg.Crawl.FileExtensions = splitAndTrim(extStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running campusbot serve.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
