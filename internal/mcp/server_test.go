package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/abacus/pkg/session"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestTools_SessionFlow(t *testing.T) {
	store := session.NewMemoryStore(session.Options{})
	srv := NewServer(store, "test")
	ctx := context.Background()

	result, err := srv.handleNewSession(ctx, callRequest("new_session", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var created map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &created))
	id := created["session"]
	require.NotEmpty(t, id)
	assert.Equal(t, "0", created["display"])

	result, err = srv.handlePress(ctx, callRequest("press", map[string]any{
		"session": id,
		"keys":    "3+4×2 Enter",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var pressed session.PressResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &pressed))
	assert.Equal(t, "14", pressed.Display)
	assert.Equal(t, 6, pressed.Accepted)

	result, err = srv.handleDisplay(ctx, callRequest("display", map[string]any{"session": id}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `"display": "14"`)
}

func TestTools_MissingArguments(t *testing.T) {
	srv := NewServer(session.NewMemoryStore(session.Options{}), "test")
	ctx := context.Background()

	result, err := srv.handlePress(ctx, callRequest("press", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = srv.handleDisplay(ctx, callRequest("display", map[string]any{"session": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = srv.handleEvaluate(ctx, callRequest("evaluate", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestTools_Evaluate(t *testing.T) {
	srv := NewServer(session.NewMemoryStore(session.Options{}), "test")

	tests := map[string]string{
		"3+4*2=":       "14",
		"0.1+0.2=":     "0.3",
		"8/0=":         "Error",
		"5+=":          "5",
		"12 Backspace": "1",
	}

	for keys, want := range tests {
		result, err := srv.handleEvaluate(context.Background(), callRequest("evaluate", map[string]any{"keys": keys}))
		require.NoError(t, err)
		assert.Equal(t, want, resultText(t, result), "keys %q", keys)
	}
}
