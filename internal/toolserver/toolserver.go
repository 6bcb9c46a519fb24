// Package toolserver exposes the hybrid search surface as a single MCP
// tool, search_knowledge: tool registration, CallToolResult/errorResult
// convention, and argument type-assertion validation.
package toolserver

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

const (
	maxQueryLen = 500
	defaultTopK = 5
	minTopK     = 1
	maxTopK     = 20
)

var validFileTypes = map[string]models.FileCategory{
	"CODE":     models.CategoryCode,
	"DOCUMENT": models.CategoryDocument,
	"CONFIG":   models.CategoryConfig,
}

// Searcher is the subset of the hybrid search surface the tool depends on.
type Searcher interface {
	SearchFormatted(ctx context.Context, userID, query string, topK int, fileType *models.FileCategory) (string, error)
}

// TenantResolver resolves the calling userId from tool arguments.
type TenantResolver interface {
	ResolveFromToolArgs(toolArgs map[string]any) (string, error)
}

// Server wraps an mcp-go server exposing search_knowledge.
type Server struct {
	mcpServer *server.MCPServer
	search    Searcher
	tenant    TenantResolver
}

// New builds the tool server and registers search_knowledge.
func New(name, version string, search Searcher, tenant TenantResolver) *Server {
	s := &Server{search: search, tenant: tenant}

	mcpServer := server.NewMCPServer(name, version)
	mcpServer.AddTool(searchKnowledgeTool(), s.handleSearchKnowledge)
	s.mcpServer = mcpServer
	return s
}

// MCPServer exposes the underlying server for transport wiring (stdio,
// SSE) in cmd/.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves the tool over stdio, blocking until the transport closes.
func (s *Server) Start(ctx context.Context) error {
	log.Printf("Starting MCP tool server on stdio transport...")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("tool server error: %w", err)
	}
	return nil
}

func searchKnowledgeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the indexed codebase knowledge base using natural language. Use this when the user asks where something lives, how something works, or wants relevant code/document excerpts. Returns formatted context blocks, or a not-found message when nothing matches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query, non-empty, at most 500 characters.",
				},
				"file_type": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one category.",
					"enum":        []string{"CODE", "DOCUMENT", "CONFIG"},
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (1-20, default 5).",
					"default":     defaultTopK,
				},
			},
			Required: []string{"query"},
		},
	}
}

func (s *Server) handleSearchKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = make(map[string]interface{})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return errorResult("Query cannot be empty"), nil
	}
	if utf8.RuneCountInString(query) > maxQueryLen {
		return errorResult(fmt.Sprintf("query must be at most %d characters", maxQueryLen)), nil
	}

	var fileType *models.FileCategory
	if raw, present := args["file_type"]; present {
		tag, ok := raw.(string)
		if !ok {
			return errorResult("file_type must be a string"), nil
		}
		if tag != "" {
			cat, ok := validFileTypes[tag]
			if !ok {
				return errorResult("file_type must be one of CODE, DOCUMENT, CONFIG"), nil
			}
			fileType = &cat
		}
	}

	topK := defaultTopK
	if raw, present := args["top_k"]; present {
		n, ok := toInt(raw)
		if !ok {
			return errorResult("top_k must be a number"), nil
		}
		if n < minTopK || n > maxTopK {
			return errorResult(fmt.Sprintf("top_k must be between %d and %d", minTopK, maxTopK)), nil
		}
		topK = n
	}

	userID, err := s.tenant.ResolveFromToolArgs(args)
	if err != nil {
		return errorResult(fmt.Sprintf("could not resolve user: %v", err)), nil
	}

	formatted, err := s.search.SearchFormatted(ctx, userID, query, topK, fileType)
	if err != nil {
		return errorResult(fmt.Sprintf("search failed: %v", err)), nil
	}
	if formatted == "" {
		return textResult(fmt.Sprintf("No relevant knowledge found for query: %s", query)), nil
	}

	return textResult(formatted), nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: fmt.Sprintf("Error: %s", message)}},
		IsError: true,
	}
}
