package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"

	"github.com/google/uuid"
)

// sessionSink feeds router output into the session log
type sessionSink struct {
	app *App
}

func (s sessionSink) Add(level sessionlog.Level, message string) {
	s.app.logSession(level, message)
}

// logSession appends a user-visible entry, mirrors it into the diagnostic
// log and pushes it to the window.
func (a *App) logSession(level sessionlog.Level, message string) {
	var entry types.LogEntry
	if a.sessionLog != nil {
		e, err := a.sessionLog.Append(level, message)
		if err != nil {
			LogError("session_log").Err(err).Msg("Failed to store session log entry")
		}
		entry = e
	}
	if entry.ID == "" {
		entry = types.LogEntry{
			ID:        uuid.New().String(),
			Timestamp: time.Now().UnixMilli(),
			Level:     string(level),
			Message:   message,
		}
	}

	switch level {
	case sessionlog.Error:
		LogError("session_log").Msg(message)
	case sessionlog.Cmd:
		LogDebug("session_log").Msg(message)
	default:
		LogInfo("session_log").Str("level", string(level)).Msg(message)
	}

	a.emit(eventLogEntry, entry)
}

// GetSessionLog returns up to limit of the newest entries, optionally
// restricted to one level (INFO, ERROR, SUCCESS, CMD).
func (a *App) GetSessionLog(level string, limit int) ([]types.LogEntry, error) {
	if a.sessionLog == nil {
		return nil, fmt.Errorf("session log unavailable")
	}
	entries, err := a.sessionLog.Query(sessionlog.Level(strings.ToUpper(strings.TrimSpace(level))), limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.LogEntry{}
	}
	return entries, nil
}

// GetSessionLogCounts returns the number of entries per level
func (a *App) GetSessionLogCounts() (map[string]int, error) {
	if a.sessionLog == nil {
		return nil, fmt.Errorf("session log unavailable")
	}
	counts, err := a.sessionLog.Counts()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(counts))
	for level, n := range counts {
		out[string(level)] = n
	}
	return out, nil
}

// ClearSessionLog empties the session log panel
func (a *App) ClearSessionLog() error {
	if a.sessionLog == nil {
		return nil
	}
	if err := a.sessionLog.Clear(); err != nil {
		return fmt.Errorf("failed to clear session log: %w", err)
	}
	a.emit(eventLogCleared, nil)
	return nil
}

// ExportSessionLog writes the whole session log to a file chosen in the
// save dialog and returns its path.
func (a *App) ExportSessionLog() (string, error) {
	entries, err := a.GetSessionLog("", 0)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("ascend-session-%s.log", time.Now().Format("20060102-150405"))
	dest, err := a.chooseSavePath("Export Session Log", name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(dest, []byte(sessionlog.FormatAll(entries)), 0644); err != nil {
		return "", fmt.Errorf("failed to write session log: %w", err)
	}

	LogUserAction(ActionLogExport, a.state.CurrentDevice(), map[string]interface{}{
		"path":    dest,
		"entries": len(entries),
	})
	a.logSession(sessionlog.Success, "Session log exported to "+dest)
	return dest, nil
}

// GetDiagnosticLogs returns the last n lines of the diagnostic log file
func (a *App) GetDiagnosticLogs(n int) ([]string, error) {
	if n <= 0 {
		n = 200
	}
	return ReadRecentLogs(n)
}

// GetDiagnosticLogFiles lists the diagnostic log file and its rotations
func (a *App) GetDiagnosticLogFiles() ([]string, error) {
	return ListLogFiles()
}
