package mcp

import (
	"context"
	"strings"
	"testing"
)

func TestHandleAppList_DefaultFilter(t *testing.T) {
	mock := NewMockAscendApp()
	mock.ListAppsResult = []AppRecord{SampleApp("com.example.one"), SampleApp("com.example.two")}
	server := NewMCPServer(mock)

	result, err := server.handleAppList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	call := mock.GetLastCallByMethod("ListApps")
	if call == nil {
		t.Fatal("ListApps was not called")
	}
	f := call.Args[0].(AppFilter)
	if f.Scope != "all" || f.Safety != "all" || f.OEM != "all" || f.Search != "" {
		t.Errorf("Unexpected default filter: %+v", f)
	}

	text := getTextContent(result)
	if !strings.Contains(text, "2 package") || !strings.Contains(text, "com.example.two") {
		t.Errorf("Unexpected result: %s", text)
	}
}

func TestHandleAppList_PassesFilter(t *testing.T) {
	mock := NewMockAscendApp()
	server := NewMCPServer(mock)

	result, err := server.handleAppList(context.Background(), makeToolRequest(map[string]interface{}{
		"scope":  "system",
		"safety": "recommended",
		"oem":    "Google",
		"search": "maps",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f := mock.GetLastCallByMethod("ListApps").Args[0].(AppFilter)
	want := AppFilter{Scope: "system", Safety: "recommended", OEM: "Google", Search: "maps"}
	if f != want {
		t.Errorf("filter = %+v, want %+v", f, want)
	}
	if !strings.Contains(getTextContent(result), "No packages") {
		t.Errorf("Expected empty message, got: %s", getTextContent(result))
	}
}

func TestHandleAppAction_NonDestructive(t *testing.T) {
	mock := NewMockAscendApp()
	mock.RunAppActionResult = "Package com.example.one new state: disabled-user"
	server := NewMCPServer(mock)

	result, err := server.handleAppAction(context.Background(), makeToolRequest(map[string]interface{}{
		"package_name": "com.example.one",
		"action":       "disable",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(getTextContent(result), "disabled-user") {
		t.Errorf("Output not returned: %s", getTextContent(result))
	}

	call := mock.GetLastCallByMethod("RunAppAction")
	if call == nil || call.Args[0] != "com.example.one" || call.Args[1] != "disable" {
		t.Errorf("Unexpected call: %+v", call)
	}
}

func TestHandleAppAction_DestructiveNeedsConfirmation(t *testing.T) {
	for _, action := range []string{"uninstall", "clear"} {
		mock := NewMockAscendApp()
		server := NewMCPServer(mock)

		_, err := server.handleAppAction(context.Background(), makeToolRequest(map[string]interface{}{
			"package_name": "com.example.one",
			"action":       action,
		}))
		if err == nil {
			t.Errorf("%s: expected error when confirmation cannot be requested", action)
		}
		if mock.WasMethodCalled("RunAppAction") {
			t.Errorf("%s: RunAppAction must not run without confirmation", action)
		}
	}
}

func TestHandleAppAction_MissingArgs(t *testing.T) {
	server := NewMCPServer(NewMockAscendApp())

	if _, err := server.handleAppAction(context.Background(), makeToolRequest(map[string]interface{}{
		"action": "stop",
	})); err == nil {
		t.Error("Expected error for missing package_name")
	}
	if _, err := server.handleAppAction(context.Background(), makeToolRequest(map[string]interface{}{
		"package_name": "com.example.one",
	})); err == nil {
		t.Error("Expected error for missing action")
	}
}

func TestHandleFileList(t *testing.T) {
	mock := NewMockAscendApp()
	mock.ListFilesResult = []FileEntry{{Name: "DCIM", IsDir: true}, {Name: "notes.txt"}}
	server := NewMCPServer(mock)

	result, err := server.handleFileList(context.Background(), makeToolRequest(nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if call := mock.GetLastCallByMethod("ListFiles"); call == nil || call.Args[0] != "/sdcard/" {
		t.Errorf("Expected default path /sdcard/, got %+v", call)
	}
	text := getTextContent(result)
	if !strings.Contains(text, "DCIM/\n") || !strings.Contains(text, "notes.txt\n") {
		t.Errorf("Unexpected listing: %s", text)
	}
}

func TestHandleSessionLog(t *testing.T) {
	mock := NewMockAscendApp()
	mock.GetSessionLogResult = []LogEntry{
		{Timestamp: 1700000000000, Level: "CMD", Message: "adb devices"},
		{Timestamp: 1700000001000, Level: "ERROR", Message: "No device selected. Command aborted."},
	}
	server := NewMCPServer(mock)

	result, err := server.handleSessionLog(context.Background(), makeToolRequest(map[string]interface{}{
		"level": "ERROR",
		"limit": float64(5),
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	call := mock.GetLastCallByMethod("GetSessionLog")
	if call == nil || call.Args[0] != "ERROR" || call.Args[1] != 5 {
		t.Errorf("Unexpected call: %+v", call)
	}
	text := getTextContent(result)
	if !strings.Contains(text, "[CMD] adb devices") || !strings.Contains(text, "[ERROR] No device selected") {
		t.Errorf("Unexpected log text: %s", text)
	}
}
