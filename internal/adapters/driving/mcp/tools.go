package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to search the letters for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results  []SearchResultOutput `json:"results"`
	Count    int                  `json:"count"`
	Degraded bool                 `json:"degraded,omitempty"`
	Warning  string               `json:"warning,omitempty"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	SourceID string  `json:"source_id"`
	Year     string  `json:"year,omitempty"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the letters"`
	ThreadID string `json:"thread_id,omitempty" jsonschema:"thread to continue; omit to start a new one"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations,omitempty"`
	ThreadID  string   `json:"thread_id"`
	Degraded  bool     `json:"degraded,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the shareholder letters for relevant passages",
	}, s.handleSearch)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question from the shareholder letters, with year citations",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	result, err := s.ports.Retriever.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:  make([]SearchResultOutput, len(result.Chunks)),
		Count:    len(result.Chunks),
		Degraded: result.Degraded,
		Warning:  result.Warning,
	}

	for i := range result.Chunks {
		output.Results[i] = SearchResultOutput{
			SourceID: result.Chunks[i].SourceID,
			Year:     result.Chunks[i].Year,
			Content:  result.Chunks[i].Content,
			Score:    result.Chunks[i].Score,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Answer.Ask(ctx, input.ThreadID, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    result.Answer.Text,
		Citations: result.Answer.Citations,
		ThreadID:  result.ThreadID,
		Degraded:  result.Answer.Degraded,
	}, nil
}
