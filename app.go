package main

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"Ascend/mcp"
	"Ascend/pkg/bridge"
	"Ascend/pkg/debloat"
	"Ascend/pkg/session"
	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"golang.org/x/time/rate"
)

// Events emitted to the frontend
const (
	eventSession       = "session-changed"
	eventBusy          = "busy-changed"
	eventLogEntry      = "log-entry"
	eventLogCleared    = "log-cleared"
	eventDashboard     = "dashboard-updated"
	eventApps          = "apps-updated"
	eventFiles         = "files-updated"
	eventToggles       = "toggles-updated"
	eventDumpsys       = "dumpsys-output"
	eventLogcat        = "logcat-data"
	eventBinaries      = "binaries-changed"
	eventScrcpyStarted = "scrcpy-started"
	eventScrcpyStopped = "scrcpy-stopped"
)

// App struct
type App struct {
	ctx     context.Context
	version string
	cfg     Config

	// runCtx scopes every spawned command and is cancelled at shutdown
	runCtx    context.Context
	runCancel context.CancelFunc

	executor bridge.Executor
	router   *bridge.Router
	runner   *bridge.Runner

	state    *session.State
	registry *session.Registry
	poller   *session.Poller

	sessionLog *sessionlog.Store

	db   *debloat.DB
	dbMu sync.RWMutex

	keyLimiter *rate.Limiter
	binWatcher *BinWatcher

	dumpsysText string
	dumpsysMu   sync.Mutex

	// Mirroring process
	scrcpyCmd *exec.Cmd
	scrcpyMu  sync.Mutex

	// Logcat stream
	logcatCmd    *exec.Cmd
	logcatCancel context.CancelFunc
	logcatMu     sync.Mutex

	mcpServer *mcp.MCPServer

	// bootDone is closed once the startup sequence has finished
	bootDone chan struct{}

	// saveDialog asks for a destination path; "" means dismissed
	saveDialog func(title, defaultName string) (string, error)
	// onEmit observes every frontend event
	onEmit func(event string, data interface{})
}

// NewApp creates a new App instance running binaries from cfg.BinDir
func NewApp(version string, cfg Config) *App {
	return newApp(version, cfg, bridge.NewProcessExecutor(cfg.BinDir))
}

func newApp(version string, cfg Config, executor bridge.Executor) *App {
	runCtx, runCancel := context.WithCancel(context.Background())

	a := &App{
		version:   version,
		cfg:       cfg,
		runCtx:    runCtx,
		runCancel: runCancel,
		executor:  executor,
		state:     session.NewState(cfg.DefaultPath),
		db:        debloat.Empty(),
		bootDone:  make(chan struct{}),
	}

	store, err := sessionlog.Open()
	if err != nil {
		LogError("app").Err(err).Msg("Session log unavailable, entries will only reach the diagnostic log")
	}
	a.sessionLog = store

	a.router = bridge.NewRouter(bridge.NewBusy(a.onBusyChange), sessionSink{app: a}, Logger)
	a.runner = bridge.NewRunner(executor, a.router, Logger)
	a.registry = session.NewRegistry(a.state)
	a.poller = session.NewPoller(a.runner, cfg.PollInterval, Logger)
	a.keyLimiter = rate.NewLimiter(rate.Limit(cfg.Remote.Rate), cfg.Remote.Burst)
	a.saveDialog = a.wailsSaveDialog

	a.registerHandlers()
	return a
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.start()
}

// start loads the package database, watches the bin directory and kicks
// off the device bootstrap.
func (a *App) start() {
	LogAppState(StateStarting, map[string]interface{}{
		"version": a.version,
		"bin_dir": a.cfg.BinDir,
	})

	a.loadDebloatDB()
	a.startBinWatcher()
	go a.bootstrap(a.runCtx)

	if a.cfg.MCP.Enabled {
		a.startMCP()
	}
}

// bootstrap starts the adb server, waits the startup delay, fetches the
// device list once and then hands over to the poller.
func (a *App) bootstrap(ctx context.Context) {
	defer close(a.bootDone)

	startServer := bridge.Request{Command: "adb", Args: []string{"start-server"}, Background: true}
	if _, err := a.runner.Run(ctx, startServer).Wait(ctx); err != nil {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(a.cfg.StartupDelay):
	}

	if _, err := a.runner.Run(ctx, session.DevicesRequest(true)).Wait(ctx); err != nil {
		return
	}
	a.poller.Start(ctx)

	a.logSession(sessionlog.Info, "A.S.C.E.N.D. Initialized. Awaiting device connection...")
	LogAppState(StateReady, nil)
}

// Shutdown is called when the application is closing
func (a *App) Shutdown(ctx context.Context) {
	LogAppState(StateShuttingDown, nil)

	a.poller.Stop()
	a.StopScrcpy()
	a.StopLogcat()
	a.stopBinWatcher()
	a.stopMCP()
	a.runCancel()

	if a.sessionLog != nil {
		if err := a.sessionLog.Close(); err != nil {
			LogWarn("app").Err(err).Msg("Failed to close session log")
		}
	}
	LogAppState(StateStopped, nil)
}

// GetAppVersion returns the application version
func (a *App) GetAppVersion() string {
	return a.version
}

// GetSession returns the observable session state
func (a *App) GetSession() types.SessionSnapshot {
	return a.state.Snapshot(a.runner.IsBusy())
}

func (a *App) loadDebloatDB() {
	db, err := debloat.Load(a.cfg.DebloatDB)
	if err != nil {
		a.logSession(sessionlog.Error, "FATAL: Failed to load or parse debloat_db.json. "+err.Error())
		return
	}

	a.dbMu.Lock()
	a.db = db
	a.dbMu.Unlock()

	LogInfo("debloat").
		Str("path", a.cfg.DebloatDB).
		Int("entries", db.Len()).
		Int("skipped", db.Skipped()).
		Msg("Debloat database loaded")
}

func (a *App) debloatDB() *debloat.DB {
	a.dbMu.RLock()
	defer a.dbMu.RUnlock()
	return a.db
}

// emit sends an event to the window, when there is one
func (a *App) emit(event string, data interface{}) {
	if a.onEmit != nil {
		a.onEmit(event, data)
	}
	if a.ctx != nil {
		wailsRuntime.EventsEmit(a.ctx, event, data)
	}
}

func (a *App) emitSession() {
	a.emit(eventSession, a.GetSession())
}

// onBusyChange runs under the busy counter lock
func (a *App) onBusyChange(busy bool) {
	a.emit(eventBusy, busy)
}

func (a *App) wailsSaveDialog(title, defaultName string) (string, error) {
	if a.ctx == nil {
		return "", fmt.Errorf("no window available for the save dialog")
	}
	return wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: defaultName,
	})
}

// chooseSavePath opens the save dialog and maps a dismissed dialog to
// ErrCancelled.
func (a *App) chooseSavePath(title, defaultName string) (string, error) {
	dest, err := a.saveDialog(title, defaultName)
	if err != nil {
		return "", fmt.Errorf("save dialog failed: %w", err)
	}
	if dest == "" {
		return "", ErrCancelled
	}
	return dest, nil
}

func (a *App) startMCP() {
	a.mcpServer = mcp.NewMCPServer(NewMCPBridge(a))
	if err := a.mcpServer.StartAsync(); err != nil {
		LogError("mcp").Err(err).Msg("Failed to start MCP server")
		return
	}
	LogInfo("mcp").Msg("MCP server listening on stdio")
}

func (a *App) stopMCP() {
	if a.mcpServer != nil {
		a.mcpServer.Stop()
	}
}
