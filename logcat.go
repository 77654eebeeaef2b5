package main

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strings"
	"sync"

	"Ascend/pkg/sessionlog"
)

// logcatLinePattern matches the `-v time` format: "01-04 12:34:56.789 D/Tag( 1234): message"
var logcatLinePattern = regexp.MustCompile(`^\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3}\s+([VDIWEF])/([^(]+)\(\s*\d+\):\s*(.*)`)

// LogcatLine is one line of the logcat stream
type LogcatLine struct {
	Raw     string `json:"raw"`
	Level   string `json:"level,omitempty"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message,omitempty"`
}

// parseLogcatLine splits a logcat line into level, tag and message. Lines
// in other formats keep only Raw.
func parseLogcatLine(line string) LogcatLine {
	out := LogcatLine{Raw: line}
	if m := logcatLinePattern.FindStringSubmatch(line); m != nil {
		out.Level = m[1]
		out.Tag = strings.TrimSpace(m[2])
		out.Message = m[3]
	}
	return out
}

// StartLogcat streams the selected device's log to the logcat-data event.
// A running stream is stopped first.
func (a *App) StartLogcat() error {
	device := a.state.CurrentDevice()
	if device == "" {
		a.logSession(sessionlog.Error, "No device selected. Command aborted.")
		return ErrNoDevice
	}
	if err := ValidateDeviceID(device); err != nil {
		return err
	}
	ps, err := a.starter()
	if err != nil {
		return err
	}

	a.StopLogcat()

	ctx, cancel := context.WithCancel(a.runCtx)
	cmd, err := ps.Command(ctx, "adb", "-s", device, "logcat", "-v", "time")
	if err != nil {
		cancel()
		a.logSession(sessionlog.Error, err.Error())
		return err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		a.logSession(sessionlog.Error, "Failed to start command: "+err.Error())
		return err
	}

	a.logcatMu.Lock()
	a.logcatCmd = cmd
	a.logcatCancel = cancel
	a.logcatMu.Unlock()

	LogUserAction(ActionLogcatStart, device, nil)
	a.logSession(sessionlog.Success, "Logcat stream started.")

	var wg sync.WaitGroup
	wg.Add(2)
	go a.pumpLogcat(&wg, stdout, "")
	go a.pumpLogcat(&wg, stderr, "ERROR: ")

	go func() {
		wg.Wait()
		cmd.Wait()

		a.logcatMu.Lock()
		if a.logcatCmd == cmd {
			a.logcatCmd = nil
			a.logcatCancel = nil
		}
		a.logcatMu.Unlock()
		cancel()

		a.logSession(sessionlog.Info, "Logcat stream stopped.")
	}()
	return nil
}

// pumpLogcat emits every line of r, with prefix for stderr
func (a *App) pumpLogcat(wg *sync.WaitGroup, r io.Reader, prefix string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if prefix != "" {
			a.emit(eventLogcat, LogcatLine{Raw: prefix + line, Level: "E"})
			continue
		}
		a.emit(eventLogcat, parseLogcatLine(line))
	}
}

// StopLogcat ends the logcat stream, if any
func (a *App) StopLogcat() {
	a.logcatMu.Lock()
	cancel := a.logcatCancel
	running := a.logcatCmd != nil
	a.logcatCmd = nil
	a.logcatCancel = nil
	a.logcatMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if running {
		LogUserAction(ActionLogcatStop, a.state.CurrentDevice(), nil)
	}
}

// IsLogcatRunning reports whether a logcat stream is open
func (a *App) IsLogcatRunning() bool {
	a.logcatMu.Lock()
	defer a.logcatMu.Unlock()
	return a.logcatCmd != nil
}
