package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

// ========================================
// Structured Logger
// ========================================

// Logger is the process-wide diagnostic logger
var Logger zerolog.Logger

var persistentLogger *PersistentLogger

// LogLevel is the minimum level written
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ParseLogLevel maps a config string to a LogLevel, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Compression selects the codec for rotated log files
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionGzip   Compression = "gzip"
	CompressionBrotli Compression = "brotli"
)

func (c Compression) extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionBrotli:
		return ".br"
	}
	return ""
}

// LogConfig configures the diagnostic logger
type LogConfig struct {
	Level       LogLevel
	Console     bool
	File        bool
	FilePath    string
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
	Compression Compression
	AppDataPath string
}

// DefaultLogConfig logs to the console only
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       LogLevelInfo,
		Console:     true,
		File:        false,
		MaxSizeMB:   10,
		MaxAgeDays:  7,
		MaxBackups:  5,
		Compression: CompressionGzip,
	}
}

// PersistentLogConfig logs to the console and to <appDataPath>/logs/ascend.log
func PersistentLogConfig(appDataPath string) LogConfig {
	cfg := DefaultLogConfig()
	cfg.File = true
	cfg.FilePath = filepath.Join(appDataPath, "logs", "ascend.log")
	cfg.AppDataPath = appDataPath
	return cfg
}

// ========================================
// PersistentLogger
// ========================================

// PersistentLogger is an io.Writer that rotates its file by size and
// prunes old rotations by age and count.
type PersistentLogger struct {
	mu          sync.Mutex
	config      LogConfig
	currentFile *os.File
	currentSize int64
	logDir      string
	prefix      string

	stop     chan struct{}
	stopOnce sync.Once
	pending  sync.WaitGroup
}

// NewPersistentLogger opens (or creates) the log file and starts pruning
func NewPersistentLogger(config LogConfig) (*PersistentLogger, error) {
	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	base := filepath.Base(config.FilePath)
	pl := &PersistentLogger{
		config: config,
		logDir: logDir,
		prefix: strings.TrimSuffix(base, filepath.Ext(base)),
		stop:   make(chan struct{}),
	}

	if err := pl.openFile(); err != nil {
		return nil, err
	}

	go pl.cleanupRoutine()

	return pl, nil
}

// Write implements io.Writer
func (pl *PersistentLogger) Write(p []byte) (n int, err error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.config.MaxSizeMB > 0 && pl.currentSize+int64(len(p)) > int64(pl.config.MaxSizeMB)*1024*1024 {
		if err := pl.rotate(); err != nil {
			return 0, err
		}
	}

	n, err = pl.currentFile.Write(p)
	pl.currentSize += int64(n)
	return n, err
}

func (pl *PersistentLogger) openFile() error {
	file, err := os.OpenFile(pl.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	pl.currentFile = file
	pl.currentSize = info.Size()
	return nil
}

func (pl *PersistentLogger) rotatedName(t time.Time) string {
	return filepath.Join(pl.logDir, fmt.Sprintf("%s_%s.log", pl.prefix, t.Format("2006-01-02_15-04-05.000")))
}

func (pl *PersistentLogger) rotate() error {
	if pl.currentFile != nil {
		pl.currentFile.Close()
	}

	rotatedPath := pl.rotatedName(time.Now())
	if err := os.Rename(pl.config.FilePath, rotatedPath); err != nil {
		// keep appending to the same file
		return pl.openFile()
	}

	if pl.config.Compression.extension() != "" {
		pl.pending.Add(1)
		go func() {
			defer pl.pending.Done()
			if err := compressFile(rotatedPath, pl.config.Compression); err != nil {
				fmt.Fprintf(os.Stderr, "log compression failed for %s: %v\n", rotatedPath, err)
			}
		}()
	}

	return pl.openFile()
}

// compressFile replaces path with a compressed copy using codec
func compressFile(path string, codec Compression) error {
	ext := codec.extension()
	if ext == "" {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := path + ext
	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}

	var w io.WriteCloser
	switch codec {
	case CompressionBrotli:
		w = brotli.NewWriterLevel(dst, brotli.DefaultCompression)
	default:
		w = gzip.NewWriter(dst)
	}

	_, copyErr := io.Copy(w, src)
	closeErr := w.Close()
	fileErr := dst.Close()
	for _, err := range []error{copyErr, closeErr, fileErr} {
		if err != nil {
			os.Remove(dstPath)
			return err
		}
	}

	src.Close()
	return os.Remove(path)
}

func (pl *PersistentLogger) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	pl.cleanup()

	for {
		select {
		case <-pl.stop:
			return
		case <-ticker.C:
			pl.cleanup()
		}
	}
}

// rotatedFiles lists rotations newest first
func (pl *PersistentLogger) rotatedFiles() []string {
	files, err := filepath.Glob(filepath.Join(pl.logDir, pl.prefix+"_*.log*"))
	if err != nil {
		return nil
	}
	return sortByModTime(files)
}

func (pl *PersistentLogger) cleanup() {
	now := time.Now()
	for i, path := range pl.rotatedFiles() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if pl.config.MaxAgeDays > 0 && now.Sub(info.ModTime()) > time.Duration(pl.config.MaxAgeDays)*24*time.Hour {
			os.Remove(path)
			continue
		}
		if pl.config.MaxBackups > 0 && i >= pl.config.MaxBackups {
			os.Remove(path)
		}
	}
}

// Close stops pruning, waits for pending compressions and closes the file
func (pl *PersistentLogger) Close() error {
	pl.stopOnce.Do(func() { close(pl.stop) })
	pl.pending.Wait()

	pl.mu.Lock()
	defer pl.mu.Unlock()

	if pl.currentFile != nil {
		err := pl.currentFile.Close()
		pl.currentFile = nil
		return err
	}
	return nil
}

func sortByModTime(paths []string) []string {
	type fileWithTime struct {
		path    string
		modTime time.Time
	}
	var files []fileWithTime
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, fileWithTime{path: p, modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	result := make([]string, len(files))
	for i, f := range files {
		result[i] = f.path
	}
	return result
}

// ========================================
// Initialization
// ========================================

// InitLogger replaces the global Logger according to config
func InitLogger(config LogConfig) error {
	var writers []io.Writer

	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}

	if config.File && config.FilePath != "" {
		pl, err := NewPersistentLogger(config)
		if err != nil {
			return err
		}
		if persistentLogger != nil {
			persistentLogger.Close()
		}
		persistentLogger = pl
		writers = append(writers, pl)
	}

	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}

	Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(config.Level.zerolog()).
		With().
		Timestamp().
		Caller().
		Logger()

	return nil
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// CloseLogger flushes and closes the log file, if any
func CloseLogger() {
	if persistentLogger != nil {
		persistentLogger.Close()
		persistentLogger = nil
	}
}

// ========================================
// Helpers
// ========================================

func LogDebug(module string) *zerolog.Event {
	return Logger.Debug().Str("module", module)
}

func LogInfo(module string) *zerolog.Event {
	return Logger.Info().Str("module", module)
}

func LogWarn(module string) *zerolog.Event {
	return Logger.Warn().Str("module", module)
}

func LogError(module string) *zerolog.Event {
	return Logger.Error().Str("module", module)
}

// withDetails adds each detail to event with a typed field where possible
func withDetails(event *zerolog.Event, details map[string]interface{}) *zerolog.Event {
	for k, v := range details {
		switch val := v.(type) {
		case string:
			event.Str(k, val)
		case int:
			event.Int(k, val)
		case int64:
			event.Int64(k, val)
		case float64:
			event.Float64(k, val)
		case bool:
			event.Bool(k, val)
		case []string:
			event.Strs(k, val)
		case error:
			event.AnErr(k, val)
		default:
			event.Interface(k, val)
		}
	}
	return event
}

// ========================================
// User actions
// ========================================

// UserAction names something the user did in the window
type UserAction string

const (
	ActionDeviceSelect   UserAction = "device_select"
	ActionDeviceRefresh  UserAction = "device_refresh"
	ActionTabSwitch      UserAction = "tab_switch"
	ActionWirelessEnable UserAction = "wireless_enable"
	ActionReboot         UserAction = "reboot"

	ActionAppUninstall UserAction = "app_uninstall"
	ActionAppDisable   UserAction = "app_disable"
	ActionAppClear     UserAction = "app_clear"
	ActionAppStop      UserAction = "app_stop"
	ActionAppBatch     UserAction = "app_batch"

	ActionFilePull   UserAction = "file_pull"
	ActionFileRename UserAction = "file_rename"
	ActionFileDelete UserAction = "file_delete"
	ActionFileMkdir  UserAction = "file_mkdir"

	ActionScreenshot   UserAction = "screenshot"
	ActionScreenChange UserAction = "screen_change"
	ActionToggle       UserAction = "toggle"
	ActionScrcpyStart  UserAction = "scrcpy_start"
	ActionScrcpyStop   UserAction = "scrcpy_stop"
	ActionLogcatStart  UserAction = "logcat_start"
	ActionLogcatStop   UserAction = "logcat_stop"
	ActionLogExport    UserAction = "log_export"
)

// LogUserAction records a user action with optional details
func LogUserAction(action UserAction, deviceID string, details map[string]interface{}) {
	event := Logger.Info().
		Str("category", "user_interaction").
		Str("action", string(action)).
		Str("device_id", deviceID)
	withDetails(event, details).Msg("User action")
}

// ========================================
// App state
// ========================================

// AppState is a lifecycle phase of the application
type AppState string

const (
	StateStarting     AppState = "starting"
	StateReady        AppState = "ready"
	StateShuttingDown AppState = "shutting_down"
	StateStopped      AppState = "stopped"
)

func LogAppState(state AppState, details map[string]interface{}) {
	event := Logger.Info().
		Str("category", "app_state").
		Str("state", string(state))
	withDetails(event, details).Msg("App state changed")
}

// LogPanic records a recovered panic with its stack
func LogPanic(module string, recovered interface{}, stack string) {
	Logger.Error().
		Str("module", module).
		Str("category", "panic").
		Interface("recovered", recovered).
		Str("stack", stack).
		Msg("Panic recovered")
}

// ========================================
// Timing
// ========================================

// OperationTimer measures one operation and logs its duration
type OperationTimer struct {
	module    string
	operation string
	startTime time.Time
	details   map[string]interface{}
}

func StartOperation(module, operation string) *OperationTimer {
	return &OperationTimer{
		module:    module,
		operation: operation,
		startTime: time.Now(),
		details:   make(map[string]interface{}),
	}
}

func (t *OperationTimer) AddDetail(key string, value interface{}) *OperationTimer {
	t.details[key] = value
	return t
}

func (t *OperationTimer) End() {
	t.event(Logger.Info()).Msg("Operation completed")
}

func (t *OperationTimer) EndWithError(err error) {
	t.event(Logger.Error().Err(err)).Msg("Operation failed")
}

func (t *OperationTimer) event(e *zerolog.Event) *zerolog.Event {
	d := time.Since(t.startTime)
	e.Str("module", t.module).
		Str("category", "performance").
		Str("operation", t.operation).
		Dur("duration", d).
		Int64("duration_ms", d.Milliseconds())
	return withDetails(e, t.details)
}

// ========================================
// Diagnostic log access (bound to the frontend)
// ========================================

// GetLogFilePath returns the active log file, or "" when logging to the
// console only.
func GetLogFilePath() string {
	if persistentLogger != nil {
		return persistentLogger.config.FilePath
	}
	return ""
}

// ListLogFiles returns the active log file and its rotations, newest first
func ListLogFiles() ([]string, error) {
	if persistentLogger == nil {
		return nil, fmt.Errorf("persistent logger not initialized")
	}
	return sortByModTime(append([]string{persistentLogger.config.FilePath}, persistentLogger.rotatedFiles()...)), nil
}

// ReadRecentLogs returns the last n lines of the active log file
func ReadRecentLogs(n int) ([]string, error) {
	if persistentLogger == nil {
		return nil, fmt.Errorf("persistent logger not initialized")
	}

	content, err := os.ReadFile(persistentLogger.config.FilePath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) <= n {
		return lines, nil
	}
	return lines[len(lines)-n:], nil
}

func init() {
	_ = InitLogger(DefaultLogConfig())
}
