package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// TestNewMCPServer tests server creation
func TestNewMCPServer(t *testing.T) {
	mock := NewMockAscendApp()
	server := NewMCPServer(mock)

	if server == nil {
		t.Fatal("NewMCPServer should not return nil")
	}
	if server.app == nil {
		t.Error("server.app should not be nil")
	}
	if server.server == nil {
		t.Error("server.server (underlying MCP server) should not be nil")
	}
	if !mock.WasMethodCalled("GetAppVersion") {
		t.Error("GetAppVersion should be called during server creation")
	}
}

func TestMCPServer_IsRunning(t *testing.T) {
	server := NewMCPServer(NewMockAscendApp())
	if server.IsRunning() {
		t.Error("Server should not be running initially")
	}
}

func TestMCPServer_Stop(t *testing.T) {
	server := NewMCPServer(NewMockAscendApp())

	// Stop should not panic even when not running
	server.Stop()

	if server.IsRunning() {
		t.Error("Server should not be running after Stop")
	}
}

func TestMockAscendApp_Interface(t *testing.T) {
	var _ AscendApp = (*MockAscendApp)(nil)
}

func TestMockAscendApp_RecordsCalls(t *testing.T) {
	mock := NewMockAscendApp()

	mock.ListDevices()
	mock.SelectDevice("device1")
	mock.SendKey("home")

	calls := mock.GetCalls()
	if len(calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(calls))
	}
	if calls[1].Method != "SelectDevice" || calls[1].Args[0] != "device1" {
		t.Errorf("Unexpected second call: %+v", calls[1])
	}

	mock.ResetCalls()
	if len(mock.GetCalls()) != 0 {
		t.Error("Calls should be empty after ResetCalls")
	}
}

func TestDevicesResource(t *testing.T) {
	mock := NewMockAscendApp()
	mock.ListDevicesResult = DeviceList{Devices: []string{"abc", "def"}, Current: "abc"}
	server := NewMCPServer(mock)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ascend://devices"
	contents, err := server.handleDevicesResource(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("Expected TextResourceContents, got %T", contents[0])
	}
	if text.URI != "ascend://devices" || text.MIMEType != "application/json" {
		t.Errorf("Unexpected resource header: %s %s", text.URI, text.MIMEType)
	}

	var got DeviceList
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("Resource is not JSON: %v", err)
	}
	if got.Current != "abc" || len(got.Devices) != 2 {
		t.Errorf("Unexpected device list: %+v", got)
	}
}

func TestDevicesResource_Error(t *testing.T) {
	mock := NewMockAscendApp()
	mock.ListDevicesError = ErrNoDevice
	server := NewMCPServer(mock)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ascend://devices"
	if _, err := server.handleDevicesResource(context.Background(), req); err == nil {
		t.Error("Expected error, got nil")
	}
}

func TestSessionResource(t *testing.T) {
	mock := NewMockAscendApp()
	mock.SessionResult = SessionSnapshot{CurrentDevice: "abc", CurrentPath: "/sdcard/"}
	server := NewMCPServer(mock)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "ascend://session"
	contents, err := server.handleSessionResource(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var got SessionSnapshot
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &got); err != nil {
		t.Fatalf("Resource is not JSON: %v", err)
	}
	if got.CurrentDevice != "abc" || got.CurrentPath != "/sdcard/" {
		t.Errorf("Unexpected snapshot: %+v", got)
	}
}
