package config

import "time"

// DefaultFileExtensions lists the link suffixes the crawler treats as downloadable files.
var DefaultFileExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".doc", ".docx"}

// embeddingDefaults maps each provider to the embedding model used when none is set.
var embeddingDefaults = map[ProviderType]string{
	ProviderOpenAI: "text-embedding-3-small",
	ProviderOllama: "nomic-embed-text",
}

// modelDefaults maps each provider to the generation model used when none is set.
var modelDefaults = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "flan-t5",
}

// inputTokenDefaults maps each provider to the prompt budget of its default
// generation model. Chat models take the whole prompt; flan-t5 reads 512 tokens.
var inputTokenDefaults = map[ProviderType]int{
	ProviderOpenAI: 0,
	ProviderOllama: 512,
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             modelDefaults[ProviderOpenAI],
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    embeddingDefaults[ProviderOpenAI],
		DataDir:           ".campusbot",
		Server: ServerConfig{
			Port:     5000,
			AllowAll: true,
		},
		Corpus: CorpusConfig{
			Dir:     "scraped_data",
			Include: []string{"**"},
		},
		Retrieval: RetrievalConfig{
			TopK:         3,
			Metric:       MetricL2,
			ContextChars: 1000,
			SourceChars:  500,
		},
		Generation: GenerationConfig{
			MaxTokens:         150,
			MaxInputTokens:    inputTokenDefaults[ProviderOpenAI],
			Institution:       "IHEC Carthage",
			InstitutionDetail: "a university in Tunisia",
		},
		Crawl: CrawlConfig{
			BaseURL:        "https://ihec.rnu.tn/fr",
			Delay:          2 * time.Second,
			OutputDir:      "scraped_data",
			UserAgent:      "campusbot/1.0",
			FileExtensions: DefaultFileExtensions,
		},
		Store: StoreConfig{
			MongoURI:   "mongodb://localhost:27017",
			Database:   "ihec",
			Collection: "web",
		},
	}
}

// DefaultEmbeddingModel returns the embedding model for a provider.
func DefaultEmbeddingModel(p ProviderType) string {
	return embeddingDefaults[p]
}

// DefaultModel returns the generation model for a provider.
func DefaultModel(p ProviderType) string {
	return modelDefaults[p]
}

// DefaultMaxInputTokens returns the prompt budget for a provider's default
// model. 0 means no truncation.
func DefaultMaxInputTokens(p ProviderType) int {
	return inputTokenDefaults[p]
}
