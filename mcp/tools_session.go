package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerSessionTools registers session log tools
func (s *MCPServer) registerSessionTools() {
	// session_log - Read the session log
	s.server.AddTool(
		mcp.NewTool("session_log",
			mcp.WithDescription("Read recent session log entries: commands issued, results and errors"),
			mcp.WithString("level",
				mcp.Description("Only entries of this level"),
				mcp.Enum("INFO", "ERROR", "SUCCESS", "CMD"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of entries, newest last (default: 50)"),
			),
		),
		s.handleSessionLog,
	)
}

func (s *MCPServer) handleSessionLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	level, _ := args["level"].(string)
	limit := 50
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	entries, err := s.app.GetSessionLog(level, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read session log: %w", err)
	}

	if len(entries) == 0 {
		return textResult("Session log is empty"), nil
	}

	var b strings.Builder
	for _, e := range entries {
		ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
		fmt.Fprintf(&b, "[%s] [%s] %s\n", ts, e.Level, e.Message)
	}
	return textResult(b.String()), nil
}
