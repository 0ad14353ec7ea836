package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ziadkadry99/campusbot/internal/corpus"
	"github.com/ziadkadry99/campusbot/internal/embeddings"
	"github.com/ziadkadry99/campusbot/internal/llm"
	"github.com/ziadkadry99/campusbot/internal/progress"
	"github.com/ziadkadry99/campusbot/internal/vectordb"
)

// ErrEmptyQuestion is returned by Ask when the question is empty or only whitespace.
var ErrEmptyQuestion = errors.New("empty question")

// ErrNotBuilt is returned when the service is queried before Build.
var ErrNotBuilt = errors.New("chatbot: index has not been built")

// Answer is the response to one question.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Result is one retrieved document with its distance to the query.
type Result struct {
	Position int
	Distance float32
	Document corpus.Document
}

// Options tunes retrieval and generation.
type Options struct {
	TopK              int     // Documents retrieved per question.
	ContextChars      int     // Runes of each document placed in the prompt.
	SourceChars       int     // Runes of each document returned as a source.
	MaxTokens         int     // Generation budget.
	MaxInputTokens    int     // Prompt budget of small local models; 0 disables truncation.
	Temperature       float64 // 0 asks for greedy decoding.
	Model             string  // Overrides the provider model when set.
	Institution       string
	InstitutionDetail string
	BatchSize         int // Documents per embedding request during Build.
	Reporter          progress.Reporter
	Logger            *slog.Logger
}

// DefaultOptions returns the options used by the campus deployment.
func DefaultOptions() Options {
	return Options{
		TopK:              3,
		ContextChars:      1000,
		SourceChars:       500,
		MaxTokens:         150,
		Institution:       "IHEC Carthage",
		InstitutionDetail: "a university in Tunisia",
		BatchSize:         32,
	}
}

// Service answers questions over a fixed document corpus. Build must be
// called once before Retrieve, Search or Ask.
type Service struct {
	embedder embeddings.Embedder
	index    vectordb.Index
	provider llm.Provider
	opts     Options
	logger   *slog.Logger

	docs []corpus.Document
}

// New creates a Service. Zero-valued numeric options fall back to DefaultOptions.
func New(embedder embeddings.Embedder, index vectordb.Index, provider llm.Provider, opts Options) *Service {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.ContextChars <= 0 {
		opts.ContextChars = def.ContextChars
	}
	if opts.SourceChars <= 0 {
		opts.SourceChars = def.SourceChars
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.Institution == "" {
		opts.Institution = def.Institution
		opts.InstitutionDetail = def.InstitutionDetail
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		embedder: embedder,
		index:    index,
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

// Build embeds every document and fills the index so that row i holds
// the vector of docs[i].
func (s *Service) Build(ctx context.Context, docs []corpus.Document) error {
	if len(docs) == 0 {
		return fmt.Errorf("chatbot: no documents to index")
	}
	if s.index.Len() != 0 {
		return fmt.Errorf("chatbot: index already holds %d vectors", s.index.Len())
	}

	s.opts.Reporter.Start(len(docs))
	defer s.opts.Reporter.Finish()

	for start := 0; start < len(docs); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(docs))

		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			texts = append(texts, d.Content)
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding documents %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(texts))
		}
		if err := s.index.Add(ctx, vectors); err != nil {
			return fmt.Errorf("indexing documents %d-%d: %w", start, end-1, err)
		}

		s.opts.Reporter.Update(end, docs[end-1].Name)
	}

	if s.index.Len() != len(docs) {
		return fmt.Errorf("chatbot: index holds %d vectors for %d documents", s.index.Len(), len(docs))
	}

	s.docs = docs
	s.logger.Info("index built",
		"documents", len(docs),
		"dimensions", s.index.Dimensions(),
		"embedder", s.embedder.Name())
	return nil
}

// Len returns the number of indexed documents.
func (s *Service) Len() int {
	return len(s.docs)
}

// Dimensions returns the dimension of the indexed vectors.
func (s *Service) Dimensions() int {
	return s.index.Dimensions()
}

// Search embeds query and returns up to k nearest documents, closest first.
func (s *Service) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if len(s.docs) == 0 {
		return nil, ErrNotBuilt
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	hits, err := s.index.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(s.docs) {
			return nil, fmt.Errorf("index returned position %d outside corpus of %d", h.Position, len(s.docs))
		}
		results = append(results, Result{
			Position: h.Position,
			Distance: h.Distance,
			Document: s.docs[h.Position],
		})
	}
	return results, nil
}

// Retrieve returns the k documents closest to query.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]corpus.Document, error) {
	results, err := s.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]corpus.Document, len(results))
	for i, r := range results {
		docs[i] = r.Document
	}
	return docs, nil
}

// Ask answers question from the top documents of the corpus. The question
// is searched and prompted as given; whitespace only matters for the
// emptiness check.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	docs, err := s.Retrieve(ctx, question, s.opts.TopK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(docs))
	sources := make([]string, len(docs))
	for i, d := range docs {
		contexts[i] = firstRunes(d.Content, s.opts.ContextChars)
		sources[i] = firstRunes(d.Content, s.opts.SourceChars)
	}

	answer, err := s.generate(ctx, question, strings.Join(contexts, "\n\n"))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("question answered", "question", question, "sources", len(sources))
	return &Answer{Answer: answer, Sources: sources}, nil
}

func (s *Service) generate(ctx context.Context, question, contextText string) (string, error) {
	prompt := s.fitPrompt(question, contextText)

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}

// fitPrompt builds the prompt within MaxInputTokens by cutting the context,
// keeping the question and the closing "Answer:" cue. A template that alone
// exceeds the budget is cut from the tail.
func (s *Service) fitPrompt(question, contextText string) string {
	prompt := buildPrompt(s.opts.Institution, s.opts.InstitutionDetail, question, contextText)
	if s.opts.MaxInputTokens <= 0 {
		return prompt
	}

	limit := s.opts.MaxInputTokens * llm.CharsPerToken
	if utf8.RuneCountInString(prompt) <= limit {
		return prompt
	}

	frame := utf8.RuneCountInString(buildPrompt(s.opts.Institution, s.opts.InstitutionDetail, question, ""))
	if frame >= limit {
		return llm.TruncateToTokens(prompt, s.opts.MaxInputTokens)
	}

	s.logger.Debug("context truncated to fit the prompt budget", "max_input_tokens", s.opts.MaxInputTokens)
	return buildPrompt(s.opts.Institution, s.opts.InstitutionDetail, question, firstRunes(contextText, limit-frame))
}

// firstRunes returns at most n runes of s.
func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
