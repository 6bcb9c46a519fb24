package toolserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

type fakeSearcher struct {
	formatted string
	err       error
}

func (f *fakeSearcher) SearchFormatted(ctx context.Context, userID, query string, topK int, fileType *models.FileCategory) (string, error) {
	return f.formatted, f.err
}

type fakeTenant struct {
	userID string
	err    error
}

func (f *fakeTenant) ResolveFromToolArgs(args map[string]any) (string, error) {
	return f.userID, f.err
}

func callArgs(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleSearchKnowledge_ReturnsFormattedContext(t *testing.T) {
	s := New("test", "0.0.1", &fakeSearcher{formatted: "文件: a.go\n内容:\npackage a"}, &fakeTenant{userID: "alice"})

	res, err := s.handleSearchKnowledge(context.Background(), callArgs(map[string]interface{}{"query": "how does auth work"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
}

func TestHandleSearchKnowledge_RejectsEmptyQuery(t *testing.T) {
	s := New("test", "0.0.1", &fakeSearcher{}, &fakeTenant{userID: "alice"})

	res, err := s.handleSearchKnowledge(context.Background(), callArgs(map[string]interface{}{"query": ""}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestHandleSearchKnowledge_RejectsInvalidFileType(t *testing.T) {
	s := New("test", "0.0.1", &fakeSearcher{}, &fakeTenant{userID: "alice"})

	res, err := s.handleSearchKnowledge(context.Background(), callArgs(map[string]interface{}{
		"query":     "how does auth work",
		"file_type": "BOGUS",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestHandleSearchKnowledge_RejectsOutOfRangeTopK(t *testing.T) {
	s := New("test", "0.0.1", &fakeSearcher{}, &fakeTenant{userID: "alice"})

	res, err := s.handleSearchKnowledge(context.Background(), callArgs(map[string]interface{}{
		"query": "how does auth work",
		"top_k": float64(50),
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestHandleSearchKnowledge_ReturnsNotFoundMessage(t *testing.T) {
	s := New("test", "0.0.1", &fakeSearcher{formatted: ""}, &fakeTenant{userID: "alice"})

	res, err := s.handleSearchKnowledge(context.Background(), callArgs(map[string]interface{}{"query": "nonexistent thing"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(mcp.TextContent).Text
	require.Contains(t, text, "No relevant knowledge found for query")
}
