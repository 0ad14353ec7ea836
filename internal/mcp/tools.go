package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askQuestionTool defines the ask_question MCP tool.
var askQuestionTool = mcp.NewTool("ask_question",
	mcp.WithDescription("Ask the campus assistant a question. Returns a generated answer and the excerpts it was based on."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Question about the institution, e.g. registration, exams, fees"),
	),
)

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the scraped campus documents semantically without generating an answer."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of documents to return (default 3)"),
	),
)
