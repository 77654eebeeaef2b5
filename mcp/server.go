package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"Ascend/pkg/types"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Type aliases for the shared types
type (
	Dashboard       = types.Dashboard
	AppRecord       = types.AppRecord
	AppFilter       = types.AppFilter
	FileEntry       = types.FileEntry
	Toggles         = types.Toggles
	LogEntry        = types.LogEntry
	SessionSnapshot = types.SessionSnapshot
)

// DeviceList is the attached devices and the one commands go to
type DeviceList struct {
	Devices []string `json:"devices"`
	Current string   `json:"current"`
}

// AscendApp is what the MCP server needs from the application. Every
// method blocks until the device has answered.
type AscendApp interface {
	// Device
	ListDevices() (DeviceList, error)
	SelectDevice(deviceID string) error
	GetDashboard() (Dashboard, error)
	Reboot(mode string) error
	SendKey(name string) error
	SendText(text string) error
	RunQuickCommand(name string) (string, error)
	GetToggles() (Toggles, error)
	SetToggle(name string, on bool) (Toggles, error)

	// Apps
	ListApps(filter AppFilter) ([]AppRecord, error)
	RunAppAction(packageName, action string) (string, error)

	// Files
	ListFiles(dir string) ([]FileEntry, error)

	// Session
	GetSession() SessionSnapshot
	GetSessionLog(level string, limit int) ([]LogEntry, error)

	GetAppVersion() string
}

// MCPServer exposes AscendApp over the Model Context Protocol
type MCPServer struct {
	app       AscendApp
	server    *server.MCPServer
	stdio     *server.StdioServer
	mu        sync.Mutex
	isRunning bool
}

// NewMCPServer creates a new MCP server for Ascend
func NewMCPServer(app AscendApp) *MCPServer {
	mcpServer := server.NewMCPServer(
		"ascend-device-manager",
		app.GetAppVersion(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithElicitation(),
		server.WithLogging(),
	)

	s := &MCPServer{
		app:    app,
		server: mcpServer,
	}

	s.registerTools()
	s.registerResources()

	return s
}

func (s *MCPServer) registerTools() {
	s.registerDeviceTools()
	s.registerAppTools()
	s.registerFileTools()
	s.registerSessionTools()
}

func (s *MCPServer) registerResources() {
	s.server.AddResource(
		mcp.NewResource(
			"ascend://devices",
			"Attached Android devices and the selected one",
			mcp.WithMIMEType("application/json"),
		),
		s.handleDevicesResource,
	)

	s.server.AddResource(
		mcp.NewResource(
			"ascend://session",
			"Current session state: device, tab, path, toggles and dashboard",
			mcp.WithMIMEType("application/json"),
		),
		s.handleSessionResource,
	)
}

// Start runs the server on stdio and blocks until it shuts down
func (s *MCPServer) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("MCP server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	return s.run()
}

// StartAsync starts the MCP server in a goroutine (non-blocking)
func (s *MCPServer) StartAsync() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("MCP server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.run()
	return nil
}

func (s *MCPServer) run() error {
	s.stdio = server.NewStdioServer(s.server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(os.Stderr, "[MCP] Ascend MCP Server started")
	err := s.stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[MCP] Server error: %v\n", err)
	}

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	return err
}

// Stop marks the server stopped. The stdio loop ends when stdin closes.
func (s *MCPServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isRunning = false
}

// IsRunning returns whether the MCP server is running
func (s *MCPServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// requestConfirmation asks the client to confirm a destructive operation
func (s *MCPServer) requestConfirmation(ctx context.Context, operation, details string) (bool, error) {
	elicitationRequest := mcp.ElicitationRequest{
		Params: mcp.ElicitationParams{
			Message: fmt.Sprintf("Dangerous operation: %s\n\nDetails: %s\n\nDo you want to proceed?", operation, details),
			RequestedSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"confirm": map[string]any{
						"type":        "boolean",
						"description": "Confirm to proceed with this operation",
					},
				},
				"required": []string{"confirm"},
			},
		},
	}

	result, err := s.server.RequestElicitation(ctx, elicitationRequest)
	if err != nil {
		return false, fmt.Errorf("failed to request confirmation: %w", err)
	}

	if result.Action != mcp.ElicitationResponseActionAccept {
		return false, nil
	}

	data, ok := result.Content.(map[string]any)
	if !ok {
		return false, fmt.Errorf("unexpected response format")
	}

	confirm, ok := data["confirm"].(bool)
	if !ok {
		return false, fmt.Errorf("invalid confirmation response")
	}

	return confirm, nil
}

// textResult wraps lines of text as a tool result
func textResult(texts ...string) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(texts))
	for _, t := range texts {
		content = append(content, mcp.NewTextContent(t))
	}
	return &mcp.CallToolResult{Content: content}
}

// stringArg returns a required, non-empty string argument
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return v, nil
}
