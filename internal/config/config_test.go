package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected default top_k 3, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Metric != MetricL2 {
		t.Errorf("expected default metric l2, got %q", cfg.Retrieval.Metric)
	}
	if cfg.Crawl.BaseURL != "https://ihec.rnu.tn/fr" {
		t.Errorf("unexpected default base url %q", cfg.Crawl.BaseURL)
	}
	if cfg.Crawl.Delay != 2*time.Second {
		t.Errorf("expected default delay 2s, got %v", cfg.Crawl.Delay)
	}
	if cfg.Store.Collection != "web" {
		t.Errorf("expected default collection web, got %q", cfg.Store.Collection)
	}
	if cfg.Generation.MaxInputTokens != 0 {
		t.Errorf("chat model default should not truncate prompts, got max_input_tokens %d", cfg.Generation.MaxInputTokens)
	}
}

func TestDefaultMaxInputTokens(t *testing.T) {
	if got := DefaultMaxInputTokens(ProviderOpenAI); got != 0 {
		t.Errorf("DefaultMaxInputTokens(openai) = %d, want 0", got)
	}
	if got := DefaultMaxInputTokens(ProviderOllama); got != 512 {
		t.Errorf("DefaultMaxInputTokens(ollama) = %d, want 512", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.campusbot.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "llama3"
	original.Server.Port = 8088
	original.Corpus.Include = []string{"*.json", "*.txt"}
	original.Retrieval.Metric = MetricCosine
	original.Crawl.Delay = 500 * time.Millisecond
	original.Crawl.MaxPages = 40

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Server.Port != 8088 {
		t.Errorf("server.port: got %d, want 8088", loaded.Server.Port)
	}
	if loaded.Retrieval.Metric != MetricCosine {
		t.Errorf("metric: got %q, want cosine", loaded.Retrieval.Metric)
	}
	if loaded.Crawl.Delay != 500*time.Millisecond {
		t.Errorf("delay: got %v, want 500ms", loaded.Crawl.Delay)
	}
	if loaded.Crawl.MaxPages != 40 {
		t.Errorf("max_pages: got %d, want 40", loaded.Crawl.MaxPages)
	}
	if len(loaded.Corpus.Include) != 2 || loaded.Corpus.Include[1] != "*.txt" {
		t.Errorf("include: got %v", loaded.Corpus.Include)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("CAMPUSBOT_PROVIDER", "ollama")
	t.Setenv("CAMPUSBOT_SERVER__PORT", "9000")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("nested env override failed: got %d, want 9000", loaded.Server.Port)
	}
}

func TestLoadLegacyStoreEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DB", "campus")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Store.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("mongo uri: got %q", loaded.Store.MongoURI)
	}
	if loaded.Store.Database != "campus" {
		t.Errorf("database: got %q", loaded.Store.Database)
	}
	if loaded.Store.Collection != "web" {
		t.Errorf("collection should keep its default, got %q", loaded.Store.Collection)
	}
}

func TestValidateValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "anthropic" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"bad embedding provider", func(c *Config) { c.EmbeddingProvider = "bogus" }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown metric", func(c *Config) { c.Retrieval.Metric = "hamming" }},
		{"zero source chars", func(c *Config) { c.Retrieval.SourceChars = 0 }},
		{"relative base url", func(c *Config) { c.Crawl.BaseURL = "/fr" }},
		{"ftp base url", func(c *Config) { c.Crawl.BaseURL = "ftp://ihec.rnu.tn" }},
		{"negative delay", func(c *Config) { c.Crawl.Delay = -time.Second }},
		{"negative max pages", func(c *Config) { c.Crawl.MaxPages = -1 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty corpus dir", func(c *Config) { c.Corpus.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("APIKeyEnvVar(ollama) = %q, want empty", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{".pdf,.doc", []string{".pdf", ".doc"}},
		{" .pdf , .png ", []string{".pdf", ".png"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("CAMPUSBOT_RETRIEVAL__TOP_K"); got != "retrieval.top_k" {
		t.Errorf("envKey = %q", got)
	}
}
