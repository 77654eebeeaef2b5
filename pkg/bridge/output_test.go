package bridge

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultText(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"stdout on success", Result{Stdout: "List of devices attached\n"}, "SUCCESS: List of devices attached\n"},
		{"stderr when stdout empty", Result{Stderr: "1 file pulled"}, "SUCCESS: 1 file pulled"},
		{"stderr on failure", Result{ExitCode: 1, Stderr: "error: no devices", Stdout: "ignored"}, "ERROR: error: no devices"},
		{"stdout fallback on failure", Result{ExitCode: 255, Stdout: "Failure [DELETE_FAILED_INTERNAL_ERROR]"}, "ERROR: Failure [DELETE_FAILED_INTERNAL_ERROR]"},
		{"exit code fallback", Result{ExitCode: 3}, "ERROR: Command failed with exit code 3"},
		{"missing binary", Result{Path: "/opt/bin/adb", Err: fmt.Errorf("%w: /opt/bin/adb", ErrExecutableNotFound)}, "ERROR: Executable not found at /opt/bin/adb"},
		{"spawn failure", Result{Err: errors.New("permission denied")}, "ERROR: Failed to start command: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripStatus(t *testing.T) {
	tests := []struct {
		raw        string
		wantStatus Status
		wantMsg    string
	}{
		{"ERROR: boom \n", StatusError, "boom"},
		{"error:lowercase", StatusError, "lowercase"},
		{"SUCCESS: Success\n", StatusSuccess, "Success"},
		{"INFO: Logcat stream stopped.", StatusInfo, "Logcat stream stopped."},
		{"  plain text  ", StatusNone, "plain text"},
		{"the ERROR: is not leading", StatusNone, "the ERROR: is not leading"},
	}

	for _, tt := range tests {
		status, msg := StripStatus(tt.raw)
		if status != tt.wantStatus || msg != tt.wantMsg {
			t.Errorf("StripStatus(%q) = (%v, %q), want (%v, %q)", tt.raw, status, msg, tt.wantStatus, tt.wantMsg)
		}
	}
}

func TestNewOutputCarriesRequest(t *testing.T) {
	req := Request{ID: "r1", Key: ToggleKey("pointer"), Background: true}
	out := NewOutput(req, "ERROR: nope")
	if out.RequestID != "r1" || out.Key != req.Key || !out.Background {
		t.Errorf("Output lost request fields: %+v", out)
	}
	if !out.Failed() || out.Message != "nope" {
		t.Errorf("Unexpected status/message: %+v", out)
	}
}
