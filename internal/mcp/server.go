// Package mcp exposes calculator sessions as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/abacus/pkg/calc"
	"github.com/ternarybob/abacus/pkg/session"
)

// Server wraps a session store to provide MCP tool access.
type Server struct {
	store  session.Store
	server *server.MCPServer
}

// NewServer creates a new MCP server backed by store.
func NewServer(store session.Store, version string) *Server {
	s := &Server{
		store: store,
	}

	mcpServer := server.NewMCPServer(
		"abacus",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("new_session",
			mcp.WithDescription("Start a new calculator session. Returns the session ID and display."),
		),
		s.handleNewSession,
	)

	mcpServer.AddTool(
		mcp.NewTool("press",
			mcp.WithDescription("Press calculator keys in a session and return the display."),
			mcp.WithString("session",
				mcp.Required(),
				mcp.Description("Session ID returned by new_session"),
			),
			mcp.WithString("keys",
				mcp.Required(),
				mcp.Description("Keys to press, e.g. '12+3=' or '4 × 2 Enter'. Named keys: Enter, Backspace, Escape, Delete."),
			),
		),
		s.handlePress,
	)

	mcpServer.AddTool(
		mcp.NewTool("display",
			mcp.WithDescription("Show the current display and state of a session."),
			mcp.WithString("session",
				mcp.Required(),
				mcp.Description("Session ID returned by new_session"),
			),
		),
		s.handleDisplay,
	)

	mcpServer.AddTool(
		mcp.NewTool("evaluate",
			mcp.WithDescription("Press keys on a fresh calculator and return the final display. No session is kept."),
			mcp.WithString("keys",
				mcp.Required(),
				mcp.Description("Keys to press, e.g. '3+4*2='"),
			),
		),
		s.handleEvaluate,
	)
}

func (s *Server) handleNewSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.store.Create()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create session failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"session": sess.ID(),
		"display": sess.Display(),
	})
}

func (s *Server) handlePress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	if id == "" {
		return mcp.NewToolResultError("session parameter is required"), nil
	}
	keys := request.GetString("keys", "")
	if keys == "" {
		return mcp.NewToolResultError("keys parameter is required"), nil
	}

	sess, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get session failed: %v", err)), nil
	}

	return jsonResult(sess.Press(calc.SplitKeys(keys)...))
}

func (s *Server) handleDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session", "")
	if id == "" {
		return mcp.NewToolResultError("session parameter is required"), nil
	}

	sess, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get session failed: %v", err)), nil
	}

	return jsonResult(sess.State())
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := request.GetString("keys", "")
	if keys == "" {
		return mcp.NewToolResultError("keys parameter is required"), nil
	}

	engine, err := calc.New()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, key := range calc.SplitKeys(keys) {
		if tok, ok := calc.Normalize(key); ok {
			engine.Handle(tok)
		}
	}

	return mcp.NewToolResultText(engine.Display()), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}
