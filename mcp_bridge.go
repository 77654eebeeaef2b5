package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"Ascend/mcp"
	"Ascend/pkg/bridge"
	"Ascend/pkg/debloat"
	"Ascend/pkg/session"
	"Ascend/pkg/types"
)

// mcpWaitTimeout bounds how long a tool call waits for the device
const mcpWaitTimeout = 60 * time.Second

// MCPBridge bridges the main App to the MCP server. The App dispatches
// without waiting; the bridge waits for the routed output so tool calls
// can answer with a result.
type MCPBridge struct {
	app *App
}

// NewMCPBridge creates a new MCP bridge
func NewMCPBridge(app *App) *MCPBridge {
	return &MCPBridge{app: app}
}

var _ mcp.AscendApp = (*MCPBridge)(nil)

func (b *MCPBridge) waitCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.app.runCtx, mcpWaitTimeout)
}

// wait waits for p and turns failed output into an error
func (b *MCPBridge) wait(p *bridge.Pending) (bridge.Output, error) {
	ctx, cancel := b.waitCtx()
	defer cancel()
	out, err := p.Wait(ctx)
	if err != nil {
		return out, err
	}
	if out.Failed() {
		return out, errors.New(out.Message)
	}
	return out, nil
}

func (b *MCPBridge) waitDone(done <-chan struct{}) error {
	if done == nil {
		return nil
	}
	ctx, cancel := b.waitCtx()
	defer cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MCPBridge) requireDevice() error {
	if b.app.state.CurrentDevice() == "" {
		return ErrNoDevice
	}
	return nil
}

// Device

func (b *MCPBridge) ListDevices() (mcp.DeviceList, error) {
	p := b.app.runner.Run(b.app.runCtx, session.DevicesRequest(true))
	if _, err := b.wait(p); err != nil {
		return mcp.DeviceList{}, err
	}
	devices := b.app.state.Devices()
	if devices == nil {
		devices = []string{}
	}
	return mcp.DeviceList{Devices: devices, Current: b.app.state.CurrentDevice()}, nil
}

func (b *MCPBridge) SelectDevice(deviceID string) error {
	return b.app.SelectDevice(deviceID)
}

func (b *MCPBridge) GetDashboard() (types.Dashboard, error) {
	if err := b.requireDevice(); err != nil {
		return types.Dashboard{}, err
	}
	ctx, cancel := b.waitCtx()
	defer cancel()
	if _, err := bridge.WaitAll(ctx, b.app.getDashboardData()...); err != nil {
		return types.Dashboard{}, err
	}
	return b.app.state.Dashboard(), nil
}

func (b *MCPBridge) Reboot(mode string) error {
	return b.app.Reboot(mode, true)
}

func (b *MCPBridge) SendKey(name string) error {
	return b.app.SendKey(name)
}

func (b *MCPBridge) SendText(text string) error {
	return b.app.SendText(text)
}

func (b *MCPBridge) RunQuickCommand(name string) (string, error) {
	p, err := b.app.runQuickCommand(name)
	if err != nil {
		return "", err
	}
	out, err := b.wait(p)
	return out.Message, err
}

func (b *MCPBridge) GetToggles() (types.Toggles, error) {
	if err := b.requireDevice(); err != nil {
		return types.Toggles{}, err
	}
	ctx, cancel := b.waitCtx()
	defer cancel()
	if _, err := bridge.WaitAll(ctx, b.app.checkAllToggleStates()...); err != nil {
		return types.Toggles{}, err
	}
	return b.app.state.Toggles(), nil
}

func (b *MCPBridge) SetToggle(name string, on bool) (types.Toggles, error) {
	done, err := b.app.setToggle(name, on)
	if err != nil {
		return types.Toggles{}, err
	}
	if err := b.waitDone(done); err != nil {
		return types.Toggles{}, err
	}
	return b.app.state.Toggles(), nil
}

// Apps

// ListApps reloads the package list for filter.Scope and returns the
// entries matching the rest of filter. The window's own filter is kept.
func (b *MCPBridge) ListApps(filter types.AppFilter) ([]types.AppRecord, error) {
	switch filter.Scope {
	case "":
		filter.Scope = "all"
	case "all", "system", "user":
	default:
		return nil, errors.New("unknown app scope: " + filter.Scope)
	}

	f := b.app.state.AppFilter()
	f.Scope = filter.Scope
	b.app.state.SetAppFilter(f)

	p, err := b.app.listApps()
	if err != nil {
		return nil, err
	}
	if _, err := b.wait(p); err != nil {
		return nil, err
	}

	filter.Safety = orAll(filter.Safety)
	filter.OEM = orAll(filter.OEM)
	apps := debloat.Filter(b.app.state.Apps(), filter)
	if apps == nil {
		apps = []types.AppRecord{}
	}
	return apps, nil
}

// RunAppAction applies action to one package. The MCP client confirms
// destructive actions before this is called.
func (b *MCPBridge) RunAppAction(packageName, action string) (string, error) {
	p, done, err := b.app.appAction(packageName, AppAction(action), true)
	if err != nil {
		return "", err
	}
	out, err := b.wait(p)
	if err != nil {
		return "", err
	}
	if strings.Contains(out.Message, "Failure") {
		return "", errors.New(out.Message)
	}
	b.waitDone(done)
	return out.Message, nil
}

// Files

func (b *MCPBridge) ListFiles(dir string) ([]types.FileEntry, error) {
	p, err := b.app.listDeviceFiles(dir)
	if err != nil {
		return nil, err
	}
	if _, err := b.wait(p); err != nil {
		return nil, err
	}
	files := b.app.state.Files()
	if files == nil {
		files = []types.FileEntry{}
	}
	return files, nil
}

// Session

func (b *MCPBridge) GetSession() types.SessionSnapshot {
	return b.app.GetSession()
}

func (b *MCPBridge) GetSessionLog(level string, limit int) ([]types.LogEntry, error) {
	return b.app.GetSessionLog(level, limit)
}

func (b *MCPBridge) GetAppVersion() string {
	return b.app.GetAppVersion()
}
