package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *MCPServer) registerFileTools() {
	s.server.AddTool(
		mcp.NewTool("file_list",
			mcp.WithDescription("List a directory on the selected device. Directories end with '/'."),
			mcp.WithString("path",
				mcp.Description("Absolute device path (default: /sdcard/)"),
			),
		),
		s.handleFileList,
	)
}

func (s *MCPServer) handleFileList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, _ := request.GetArguments()["path"].(string)
	if dir == "" {
		dir = "/sdcard/"
	}

	entries, err := s.app.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	if len(entries) == 0 {
		return textResult(fmt.Sprintf("%s is empty", dir)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d entries):\n", dir, len(entries))
	for _, e := range entries {
		b.WriteString(e.Name)
		if e.IsDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
	}
	return textResult(b.String()), nil
}
