package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
)

// defaultSearchLimit is used when search_documents gets no usable limit.
const defaultSearchLimit = 3

// excerptChars bounds the document text shown per search result.
const excerptChars = 500

// handleAskQuestion answers a question with retrieval-augmented generation.
func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	ans, err := s.bot.Ask(ctx, question)
	if errors.Is(err, chatbot.ErrEmptyQuestion) {
		return mcp.NewToolResultError("Empty question"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatAnswer(ans)), nil
}

// handleSearchDocuments returns the documents nearest to a query.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("Empty query"), nil
	}

	limit := request.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if s.bot.Len() == 0 {
		return mcp.NewToolResultText("No documents indexed. Run `campusbot crawl` to collect pages first."), nil
	}

	results, err := s.bot.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

func formatAnswer(ans *chatbot.Answer) string {
	var sb strings.Builder
	sb.WriteString(ans.Answer)
	sb.WriteString("\n")

	if len(ans.Sources) > 0 {
		sb.WriteString("\nSources:\n")
		for i, src := range ans.Sources {
			sb.WriteString(fmt.Sprintf("\n--- Source %d ---\n%s\n", i+1, src))
		}
	}
	return sb.String()
}

// formatSearchResults converts search results into a text format suited
// to AI agent consumption.
func formatSearchResults(results []chatbot.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Document: %s\n", r.Document.Name))
		sb.WriteString(fmt.Sprintf("Distance: %.4f\n", r.Distance))
		sb.WriteString("\n")
		sb.WriteString(excerpt(r.Document.Content, excerptChars))
		sb.WriteString("\n")
	}

	return sb.String()
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
