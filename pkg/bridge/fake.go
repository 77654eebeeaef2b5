package bridge

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeCall records one Execute call on a FakeExecutor
type FakeCall struct {
	Command string
	Args    []string
}

// Line returns the arguments joined by spaces
func (c FakeCall) Line() string {
	return strings.Join(c.Args, " ")
}

type fakeRule struct {
	match string
	res   Result
}

// FakeExecutor is an in-memory Executor for tests. Responses are chosen by
// an exact match of the joined argument line first, then by the first
// registered substring match, then Default.
type FakeExecutor struct {
	mu      sync.Mutex
	calls   []FakeCall
	exact   map[string]Result
	rules   []fakeRule
	gates   []fakeGate
	Default Result
}

type fakeGate struct {
	match string
	ch    chan struct{}
}

// NewFakeExecutor returns a fake whose default result is an empty success
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{exact: make(map[string]Result)}
}

// Success builds a zero-exit result with stdout
func Success(stdout string) Result {
	return Result{Stdout: stdout}
}

// Failure builds a non-zero exit result with stderr
func Failure(code int, stderr string) Result {
	return Result{ExitCode: code, Stderr: stderr}
}

// RespondExact sets the result for an exact argument line
func (f *FakeExecutor) RespondExact(line string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[line] = res
}

// Respond sets the result for any argument line containing match
func (f *FakeExecutor) Respond(match string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{match: match, res: res})
}

// Hold blocks calls whose argument line contains match until the returned
// release func is called.
func (f *FakeExecutor) Hold(match string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates = append(f.gates, fakeGate{match: match, ch: ch})
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Execute implements Executor
func (f *FakeExecutor) Execute(ctx context.Context, command string, args []string) Result {
	call := FakeCall{Command: command, Args: append([]string(nil), args...)}
	line := call.Line()

	f.mu.Lock()
	f.calls = append(f.calls, call)
	var gates []chan struct{}
	for _, g := range f.gates {
		if strings.Contains(line, g.match) {
			gates = append(gates, g.ch)
		}
	}
	res, ok := f.exact[line]
	if !ok {
		res = f.Default
		for _, r := range f.rules {
			if strings.Contains(line, r.match) {
				res = r.res
				break
			}
		}
	}
	f.mu.Unlock()

	for _, ch := range gates {
		select {
		case <-ch:
		case <-ctx.Done():
			return Result{ExitCode: -1, Stderr: ctx.Err().Error()}
		}
	}
	return res
}

// Calls returns a copy of every recorded call
func (f *FakeExecutor) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// Lines returns the argument line of every recorded call
func (f *FakeExecutor) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Count returns how many calls contained match in their argument line
func (f *FakeExecutor) Count(match string) int {
	n := 0
	for _, line := range f.Lines() {
		if strings.Contains(line, match) {
			n++
		}
	}
	return n
}

// WaitForCount polls until Count(match) >= n or timeout elapses
func (f *FakeExecutor) WaitForCount(match string, n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if f.Count(match) >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}
