package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"
)

// processStarter is implemented by executors that can hand out
// long-running processes for the caller to own.
type processStarter interface {
	Command(ctx context.Context, command string, args ...string) (*exec.Cmd, error)
	Resolve(command string) (string, error)
}

var errNoProcessSupport = errors.New("executor cannot start tracked processes")

func (a *App) starter() (processStarter, error) {
	ps, ok := a.executor.(processStarter)
	if !ok {
		return nil, errNoProcessSupport
	}
	return ps, nil
}

// scrcpyArgs builds the mirroring command line for device
func scrcpyArgs(device string, cfg types.ScrcpyConfig, now time.Time) []string {
	args := []string{"-s", device}
	if cfg.BitRate > 0 {
		args = append(args, "--video-bit-rate", fmt.Sprintf("%dM", cfg.BitRate))
	}
	if cfg.Record {
		args = append(args, "--record", fmt.Sprintf("scrcpy-record-%d.mp4", now.UnixMilli()))
	}
	if cfg.Fullscreen {
		args = append(args, "--fullscreen")
	}
	if cfg.TurnScreenOff {
		args = append(args, "--turn-screen-off")
	}
	if cfg.ShowTouches {
		args = append(args, "--show-touches")
	}
	if cfg.StayAwake {
		args = append(args, "--stay-awake")
	}
	if cfg.PowerOffOnClose {
		args = append(args, "--power-off-on-close")
	}
	return append(args, "--window-title", "A.S.C.E.N.D - "+device)
}

// StartScrcpy mirrors the selected device. A running mirror is replaced.
func (a *App) StartScrcpy(cfg types.ScrcpyConfig) error {
	device := a.state.CurrentDevice()
	if device == "" {
		a.logSession(sessionlog.Error, "No device selected. Command aborted.")
		return ErrNoDevice
	}
	ps, err := a.starter()
	if err != nil {
		return err
	}

	a.StopScrcpy()

	cmd, err := ps.Command(a.runCtx, "scrcpy", scrcpyArgs(device, cfg, time.Now())...)
	if err != nil {
		a.logSession(sessionlog.Error, err.Error())
		return err
	}
	if adbPath, err := ps.Resolve("adb"); err == nil {
		cmd.Env = append(cmd.Env, "ADB="+adbPath)
		server := filepath.Join(filepath.Dir(adbPath), "scrcpy-server")
		if _, err := os.Stat(server); err == nil {
			cmd.Env = append(cmd.Env, "SCRCPY_SERVER_PATH="+server)
		}
	}

	var stderrBuf bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		a.logSession(sessionlog.Error, "Failed to start command: "+err.Error())
		return fmt.Errorf("failed to start scrcpy: %w", err)
	}

	a.scrcpyMu.Lock()
	a.scrcpyCmd = cmd
	a.scrcpyMu.Unlock()

	LogUserAction(ActionScrcpyStart, device, map[string]interface{}{"args": cmd.Args[1:]})
	a.logSession(sessionlog.Cmd, "scrcpy "+strings.Join(cmd.Args[1:], " "))
	a.emit(eventScrcpyStarted, device)

	startTime := time.Now()
	go func() {
		err := cmd.Wait()

		a.scrcpyMu.Lock()
		current := a.scrcpyCmd == cmd
		if current {
			a.scrcpyCmd = nil
		}
		a.scrcpyMu.Unlock()

		if err != nil && time.Since(startTime) < 5*time.Second {
			msg := stderrBuf.String()
			if msg == "" {
				msg = err.Error()
			}
			a.logSession(sessionlog.Error, msg)
		} else {
			a.logSession(sessionlog.Info, "Screen mirroring stopped.")
		}
		if current {
			a.emit(eventScrcpyStopped, device)
		}
	}()
	return nil
}

// StopScrcpy kills the mirroring process, if any
func (a *App) StopScrcpy() error {
	a.scrcpyMu.Lock()
	cmd := a.scrcpyCmd
	a.scrcpyCmd = nil
	a.scrcpyMu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	LogUserAction(ActionScrcpyStop, a.state.CurrentDevice(), nil)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// IsScrcpyRunning reports whether a mirror is open
func (a *App) IsScrcpyRunning() bool {
	a.scrcpyMu.Lock()
	defer a.scrcpyMu.Unlock()
	return a.scrcpyCmd != nil
}
