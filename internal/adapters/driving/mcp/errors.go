// Package mcp provides an MCP (Model Context Protocol) server adapter for omaha.
// It lets AI assistants search the indexed shareholder letters and ask
// questions about them.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")
