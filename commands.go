package main

import (
	"errors"
	"strings"

	"Ascend/pkg/bridge"
	"Ascend/pkg/session"
	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"
)

var (
	// ErrNoDevice is returned when a device command is issued with no
	// device selected. Nothing is spawned.
	ErrNoDevice = errors.New("no device selected")
	// ErrCancelled is returned when the user dismisses a dialog or a
	// destructive action arrives without confirmation.
	ErrCancelled = errors.New("cancelled")
)

// deviceSubcommands need a target device and get "-s <id>" prepended
var deviceSubcommands = map[string]bool{
	"shell":     true,
	"pull":      true,
	"push":      true,
	"tcpip":     true,
	"reboot":    true,
	"screencap": true,
	"logcat":    true,
}

func isDeviceCommand(args []string) bool {
	for _, arg := range args {
		if deviceSubcommands[arg] {
			return true
		}
	}
	return false
}

// targetArgs prefixes a device command with the selected device. It logs
// and returns ErrNoDevice when there is none.
func (a *App) targetArgs(args []string) ([]string, error) {
	if !isDeviceCommand(args) {
		return args, nil
	}
	device := a.state.CurrentDevice()
	if device == "" {
		a.logSession(sessionlog.Error, "No device selected. Command aborted.")
		return nil, ErrNoDevice
	}
	if err := ValidateDeviceID(device); err != nil {
		a.logSession(sessionlog.Error, err.Error())
		return nil, err
	}
	return append([]string{"-s", device}, args...), nil
}

// runCommand dispatches one adb invocation. Foreground commands raise the
// busy gate until their output has been routed.
func (a *App) runCommand(args []string, background bool, key bridge.Key) (*bridge.Pending, error) {
	full, err := a.targetArgs(args)
	if err != nil {
		return nil, err
	}
	if !background {
		a.logSession(sessionlog.Cmd, "adb "+strings.Join(full, " "))
	}
	return a.runner.Run(a.runCtx, bridge.Request{
		Command:    "adb",
		Args:       full,
		Background: background,
		Key:        key,
	}), nil
}

// shell runs `adb shell <args...>` against the selected device
func (a *App) shell(background bool, key bridge.Key, args ...string) (*bridge.Pending, error) {
	return a.runCommand(append([]string{"shell"}, args...), background, key)
}

// collect turns one dispatch result into a handle list
func collect(p *bridge.Pending, err error) []*bridge.Pending {
	if err != nil || p == nil {
		return nil
	}
	return []*bridge.Pending{p}
}

// refreshView reloads whatever the active tab shows. It only dispatches,
// so it is safe to call from an output handler.
func (a *App) refreshView() []*bridge.Pending {
	if a.state.CurrentDevice() == "" {
		a.logSession(sessionlog.Info, "Cannot refresh view, no device selected.")
		return nil
	}

	switch a.state.ActiveTab() {
	case types.TabDashboard:
		return a.getDashboardData()
	case types.TabApps:
		return collect(a.listApps())
	case types.TabFiles:
		return collect(a.listDeviceFiles(a.state.CurrentPath()))
	case types.TabDevice:
		return a.checkAllToggleStates()
	}
	return nil
}

// RefreshView reloads the active tab
func (a *App) RefreshView() {
	a.refreshView()
}

// SetActiveTab switches the visible section and refreshes it
func (a *App) SetActiveTab(tab string) error {
	t := types.Tab(tab)
	switch t {
	case types.TabDashboard, types.TabApps, types.TabFiles, types.TabDevice:
	default:
		return errors.New("unknown tab: " + tab)
	}
	if a.state.ActiveTab() == t {
		return nil
	}

	a.state.SetActiveTab(t)
	LogUserAction(ActionTabSwitch, a.state.CurrentDevice(), map[string]interface{}{"tab": tab})
	a.emitSession()
	a.refreshView()
	return nil
}

// RefreshDevices queries the device list in the foreground
func (a *App) RefreshDevices() {
	LogUserAction(ActionDeviceRefresh, a.state.CurrentDevice(), nil)
	a.runner.Run(a.runCtx, session.DevicesRequest(false))
}

// SelectDevice makes id the target of every device command
func (a *App) SelectDevice(id string) error {
	if err := ValidateDeviceID(id); err != nil {
		return err
	}
	previous := a.state.CurrentDevice()
	if !a.state.SetCurrentDevice(id) {
		return nil
	}

	LogUserAction(ActionDeviceSelect, id, map[string]interface{}{"previous": previous})
	a.emitSession()
	a.refreshView()
	return nil
}

func (a *App) registerHandlers() {
	a.router.Handle(bridge.KindDeviceList, a.handleDeviceList)
	a.router.Handle(bridge.KindDashboard, a.handleDashboard)
	a.router.Handle(bridge.KindFileList, a.handleFileList)
	a.router.Handle(bridge.KindAppList, a.handleAppList)
	a.router.Handle(bridge.KindToggle, a.handleToggle)
	a.router.Handle(bridge.KindDumpsys, a.handleDumpsys)
	a.router.Handle(bridge.KindBatch, a.handleBatch)
}

// handleDeviceList applies `adb devices` output. A failed query is logged
// and treated as an empty list, so a dead daemon drops the selection.
func (a *App) handleDeviceList(out bridge.Output) error {
	raw := out.Message
	if out.Failed() {
		a.logSession(sessionlog.Error, out.Message)
		raw = ""
	}

	change := a.registry.Populate(raw)
	if !change.Changed {
		return nil
	}

	LogInfo("devices").
		Strs("devices", change.Devices).
		Str("current", change.Current).
		Msg("Device list changed")

	switch {
	case change.Emptied:
		a.clearDashboard()
		a.emit(eventFiles, []types.FileEntry{})
		a.emit(eventApps, []types.AppRecord{})
	case change.Reselected:
		a.refreshView()
	}
	a.emitSession()
	return nil
}

// handleDumpsys shows output in the dumpsys text box
func (a *App) handleDumpsys(out bridge.Output) error {
	a.dumpsysMu.Lock()
	a.dumpsysText = out.Message
	a.dumpsysMu.Unlock()

	a.emit(eventDumpsys, map[string]interface{}{
		"key":    out.Key.String(),
		"text":   out.Message,
		"failed": out.Failed(),
	})
	return nil
}

// GetDumpsysOutput returns the text currently shown in the dumpsys box
func (a *App) GetDumpsysOutput() string {
	a.dumpsysMu.Lock()
	defer a.dumpsysMu.Unlock()
	return a.dumpsysText
}

// handleBatch only traces batch steps; the batch controller reports each
// package once every step has completed.
func (a *App) handleBatch(out bridge.Output) error {
	LogDebug("apps").
		Str("key", out.Key.String()).
		Bool("failed", out.Failed()).
		Msg("Batch step finished")
	return nil
}
