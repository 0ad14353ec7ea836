package config

import "time"

// ProviderType identifies an embedding or generation backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Metric selects the distance used by the vector index.
type Metric string

const (
	MetricL2     Metric = "l2"
	MetricCosine Metric = "cosine"
)

// Config is the top-level campusbot configuration, corresponding to .campusbot.yml.
type Config struct {
	Provider          ProviderType     `yaml:"provider" koanf:"provider"`
	Model             string           `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType     `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string           `yaml:"embedding_model" koanf:"embedding_model"`
	BaseURL           string           `yaml:"base_url" koanf:"base_url"`
	DataDir           string           `yaml:"data_dir" koanf:"data_dir"`
	Server            ServerConfig     `yaml:"server" koanf:"server"`
	Corpus            CorpusConfig     `yaml:"corpus" koanf:"corpus"`
	Retrieval         RetrievalConfig  `yaml:"retrieval" koanf:"retrieval"`
	Generation        GenerationConfig `yaml:"generation" koanf:"generation"`
	Crawl             CrawlConfig      `yaml:"crawl" koanf:"crawl"`
	Store             StoreConfig      `yaml:"store" koanf:"store"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// CorpusConfig points at the folder of plain-text documents to index.
type CorpusConfig struct {
	Dir     string   `yaml:"dir" koanf:"dir"`
	Include []string `yaml:"include" koanf:"include"`
}

// RetrievalConfig controls index search and context assembly.
type RetrievalConfig struct {
	TopK         int    `yaml:"top_k" koanf:"top_k"`
	Metric       Metric `yaml:"metric" koanf:"metric"`
	ContextChars int    `yaml:"context_chars" koanf:"context_chars"`
	SourceChars  int    `yaml:"source_chars" koanf:"source_chars"`
}

// GenerationConfig controls the answer generation call.
type GenerationConfig struct {
	MaxTokens         int     `yaml:"max_tokens" koanf:"max_tokens"`
	MaxInputTokens    int     `yaml:"max_input_tokens" koanf:"max_input_tokens"`
	Temperature       float64 `yaml:"temperature" koanf:"temperature"`
	RequestsPerMinute int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Institution       string  `yaml:"institution" koanf:"institution"`
	InstitutionDetail string  `yaml:"institution_detail" koanf:"institution_detail"`
}

// CrawlConfig holds scraper settings.
type CrawlConfig struct {
	BaseURL        string        `yaml:"base_url" koanf:"base_url"`
	Delay          time.Duration `yaml:"delay" koanf:"delay"`
	OutputDir      string        `yaml:"output_dir" koanf:"output_dir"`
	MaxPages       int           `yaml:"max_pages" koanf:"max_pages"`
	UserAgent      string        `yaml:"user_agent" koanf:"user_agent"`
	FileExtensions []string      `yaml:"file_extensions" koanf:"file_extensions"`
}

// StoreConfig locates the document store receiving scraped records.
type StoreConfig struct {
	MongoURI   string `yaml:"mongo_uri" koanf:"mongo_uri"`
	Database   string `yaml:"database" koanf:"database"`
	Collection string `yaml:"collection" koanf:"collection"`
}
