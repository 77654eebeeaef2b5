package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrExecutableNotFound is returned when the bundled binary is missing
var ErrExecutableNotFound = errors.New("executable not found")

// Result is what a finished subprocess produced
type Result struct {
	Path     string
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is set when the process never ran: missing binary or spawn failure
	Err error
}

// Text renders the result with its status prefix:
//
//	exit 0         -> "SUCCESS: " + stdout (stderr when stdout is empty)
//	exit N         -> "ERROR: " + stderr, else stdout, else "Command failed with exit code N"
//	missing binary -> "ERROR: Executable not found at <path>"
//	spawn failure  -> "ERROR: Failed to start command: <err>"
func (r Result) Text() string {
	switch {
	case errors.Is(r.Err, ErrExecutableNotFound):
		return PrefixError + "Executable not found at " + r.Path
	case r.Err != nil:
		return PrefixError + "Failed to start command: " + r.Err.Error()
	case r.ExitCode == 0:
		out := r.Stdout
		if out == "" {
			out = r.Stderr
		}
		return PrefixSuccess + out
	default:
		msg := r.Stderr
		if msg == "" {
			msg = r.Stdout
		}
		if msg == "" {
			msg = fmt.Sprintf("Command failed with exit code %d", r.ExitCode)
		}
		return PrefixError + msg
	}
}

// Executor runs one external command to completion
type Executor interface {
	Execute(ctx context.Context, command string, args []string) Result
}

// ProcessExecutor runs binaries from a fixed bin directory, with that
// directory as the working directory.
type ProcessExecutor struct {
	binDir string

	mu       sync.RWMutex
	resolved map[string]string
}

// NewProcessExecutor creates an executor rooted at binDir
func NewProcessExecutor(binDir string) *ProcessExecutor {
	return &ProcessExecutor{
		binDir:   binDir,
		resolved: make(map[string]string),
	}
}

// BinDir returns the directory binaries are resolved against
func (e *ProcessExecutor) BinDir() string {
	return e.binDir
}

// Resolve returns the platform path of command inside the bin directory.
// Hits are cached until Invalidate; misses are checked again every time.
func (e *ProcessExecutor) Resolve(command string) (string, error) {
	e.mu.RLock()
	path, ok := e.resolved[command]
	e.mu.RUnlock()
	if ok {
		return path, nil
	}

	path = filepath.Join(e.binDir, command+exeSuffix)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return path, fmt.Errorf("%w: %s", ErrExecutableNotFound, path)
	}

	e.mu.Lock()
	e.resolved[command] = path
	e.mu.Unlock()
	return path, nil
}

// Invalidate drops every cached resolution
func (e *ProcessExecutor) Invalidate() {
	e.mu.Lock()
	e.resolved = make(map[string]string)
	e.mu.Unlock()
}

// Command prepares a long-running process (mirroring, log streams) that the
// caller starts and owns.
func (e *ProcessExecutor) Command(ctx context.Context, command string, args ...string) (*exec.Cmd, error) {
	path, err := e.Resolve(command)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = e.binDir
	cmd.Env = cleanEnv(os.Environ())
	return cmd, nil
}

// Execute runs command and collects its output
func (e *ProcessExecutor) Execute(ctx context.Context, command string, args []string) Result {
	cmd, err := e.Command(ctx, command, args...)
	if err != nil {
		path, _ := e.Resolve(command)
		return Result{Path: path, Err: err}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{Path: cmd.Path}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.Err = err
			return res
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

var proxyVars = []string{"HTTP_PROXY", "HTTPS_PROXY", "ALL_PROXY", "NO_PROXY", "http_proxy", "https_proxy", "all_proxy", "no_proxy"}

// cleanEnv returns env without proxy variables
func cleanEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		isProxy := false
		for _, v := range proxyVars {
			if strings.HasPrefix(kv, v+"=") {
				isProxy = true
				break
			}
		}
		if !isProxy {
			out = append(out, kv)
		}
	}
	return out
}
