package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
	"github.com/ziadkadry99/campusbot/internal/config"
	"github.com/ziadkadry99/campusbot/internal/corpus"
	"github.com/ziadkadry99/campusbot/internal/db"
	"github.com/ziadkadry99/campusbot/internal/embeddings"
	"github.com/ziadkadry99/campusbot/internal/llm"
	"github.com/ziadkadry99/campusbot/internal/progress"
	"github.com/ziadkadry99/campusbot/internal/vectordb"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// The same embedder serves documents and queries.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.DefaultEmbeddingModel(provider)
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), cfg.BaseURL), nil
	case config.ProviderOllama:
		host := cfg.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		return embeddings.NewOllamaEmbedder(model, 0, host), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if rpm := cfg.Generation.RequestsPerMinute; rpm > 0 {
		provider = llm.NewRateLimitedProvider(provider, rpm)
	}
	return provider, nil
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `campusbot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openDatabase opens the local state database under the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "campusbot.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// buildService loads the corpus and builds the chatbot index. provider may
// be nil when only retrieval is needed.
func buildService(ctx context.Context, cfg *config.Config, database *db.DB, provider llm.Provider) (*chatbot.Service, error) {
	docs, err := corpus.Load(corpus.LoaderConfig{
		Dir:     cfg.Corpus.Dir,
		Include: cfg.Corpus.Include,
	})
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w\nRun `campusbot crawl` to collect pages first", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	cached := embeddings.NewCachedEmbedder(embedder, database, slog.Default())

	index, err := vectordb.New(cfg.Retrieval.Metric)
	if err != nil {
		return nil, fmt.Errorf("creating vector index: %w", err)
	}

	svc := chatbot.New(cached, index, provider, chatbot.Options{
		TopK:              cfg.Retrieval.TopK,
		ContextChars:      cfg.Retrieval.ContextChars,
		SourceChars:       cfg.Retrieval.SourceChars,
		MaxTokens:         cfg.Generation.MaxTokens,
		MaxInputTokens:    cfg.Generation.MaxInputTokens,
		Temperature:       cfg.Generation.Temperature,
		Institution:       cfg.Generation.Institution,
		InstitutionDetail: cfg.Generation.InstitutionDetail,
		Reporter:          progress.NewReporter("Indexing documents"),
		Logger:            slog.Default(),
	})

	if err := svc.Build(ctx, docs); err != nil {
		return nil, err
	}
	return svc, nil
}
