package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for omaha resources.
	uriScheme = "omaha://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing conversation threads.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "threads",
		Name:        "threads",
		Description: "List of stored conversation threads",
		MIMEType:    "application/json",
	}, s.handleThreadsResource)

	// Template for a thread's messages.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "threads/{threadId}/messages",
		Name:        "thread-messages",
		Description: "Messages of a specific conversation thread",
		MIMEType:    "application/json",
	}, s.handleMessagesResource)
}

// handleThreadsResource returns a list of all stored threads.
func (s *Server) handleThreadsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Threads == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	threads, err := s.ports.Threads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}

	// Build simplified thread list.
	type threadInfo struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		UpdatedAt string `json:"updated_at"`
	}

	infos := make([]threadInfo, len(threads))
	for i, t := range threads {
		infos[i] = threadInfo{
			ID:        t.ID,
			Title:     t.Title,
			UpdatedAt: t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling threads: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleMessagesResource returns the messages of a specific thread.
func (s *Server) handleMessagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Threads == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract threadId from URI: omaha://threads/{threadId}/messages
	threadID := extractThreadID(req.Params.URI)
	if threadID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	msgs, err := s.ports.Threads.Messages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	// Build simplified message list.
	type messageInfo struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	infos := make([]messageInfo, len(msgs))
	for i := range msgs {
		infos[i] = messageInfo{
			Role:    string(msgs[i].Role),
			Content: msgs[i].Content,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling messages: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractThreadID extracts the thread ID from a URI like omaha://threads/{threadId}/messages.
func extractThreadID(uri string) string {
	const prefix = uriScheme + "threads/"
	const suffix = "/messages"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
