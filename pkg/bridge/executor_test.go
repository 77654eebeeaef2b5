package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
}

func TestProcessExecutor_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	e := NewProcessExecutor(dir)

	res := e.Execute(context.Background(), "adb", []string{"devices"})
	if !errors.Is(res.Err, ErrExecutableNotFound) {
		t.Fatalf("Expected ErrExecutableNotFound, got %v", res.Err)
	}
	want := "ERROR: Executable not found at " + filepath.Join(dir, "adb"+exeSuffix)
	if res.Text() != want {
		t.Errorf("Text() = %q, want %q", res.Text(), want)
	}
}

func TestProcessExecutor_RunsInBinDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	writeScript(t, dir, "adb", `echo "$@"; pwd`)

	e := NewProcessExecutor(dir)
	res := e.Execute(context.Background(), "adb", []string{"-s", "emulator-5554", "shell", "wm", "size"})
	if res.Err != nil || res.ExitCode != 0 {
		t.Fatalf("Unexpected failure: %+v", res)
	}
	if !strings.Contains(res.Stdout, "-s emulator-5554 shell wm size") {
		t.Errorf("Args not passed through: %q", res.Stdout)
	}
	resolvedDir, _ := filepath.EvalSymlinks(dir)
	if !strings.Contains(res.Stdout, resolvedDir) && !strings.Contains(res.Stdout, dir) {
		t.Errorf("Expected working directory %s in output %q", dir, res.Stdout)
	}
}

func TestProcessExecutor_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	writeScript(t, dir, "adb", `echo "error: device offline" 1>&2; exit 1`)

	res := NewProcessExecutor(dir).Execute(context.Background(), "adb", nil)
	if res.ExitCode != 1 {
		t.Fatalf("Expected exit code 1, got %d", res.ExitCode)
	}
	if res.Text() != "ERROR: error: device offline\n" {
		t.Errorf("Unexpected text %q", res.Text())
	}
}

func TestProcessExecutor_ResolveCacheAndInvalidate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	writeScript(t, dir, "adb", "true")

	e := NewProcessExecutor(dir)
	if _, err := e.Resolve("adb"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	os.Remove(filepath.Join(dir, "adb"))
	if _, err := e.Resolve("adb"); err != nil {
		t.Errorf("Cached resolution should survive until Invalidate, got %v", err)
	}

	e.Invalidate()
	if _, err := e.Resolve("adb"); !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("Expected ErrExecutableNotFound after Invalidate, got %v", err)
	}
}

func TestCleanEnv(t *testing.T) {
	env := []string{"PATH=/usr/bin", "HTTP_PROXY=http://x", "https_proxy=http://y", "HOME=/root"}
	got := cleanEnv(env)
	if len(got) != 2 || got[0] != "PATH=/usr/bin" || got[1] != "HOME=/root" {
		t.Errorf("cleanEnv = %v", got)
	}
}
