package mcp

import (
	"errors"
	"sync"
)

// MockCall records a method call for verification
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockAscendApp is a mock implementation of AscendApp for testing
type MockAscendApp struct {
	mu    sync.Mutex
	Calls []MockCall

	// Device
	ListDevicesResult     DeviceList
	ListDevicesError      error
	SelectDeviceError     error
	GetDashboardResult    Dashboard
	GetDashboardError     error
	RebootError           error
	SendKeyError          error
	SendTextError         error
	RunQuickCommandResult string
	RunQuickCommandError  error
	TogglesResult         Toggles
	GetTogglesError       error
	SetToggleError        error

	// Apps
	ListAppsResult     []AppRecord
	ListAppsError      error
	RunAppActionResult string
	RunAppActionError  error

	// Files
	ListFilesResult []FileEntry
	ListFilesError  error

	// Session
	SessionResult       SessionSnapshot
	GetSessionLogResult []LogEntry
	GetSessionLogError  error

	AppVersion string
}

// NewMockAscendApp creates a new MockAscendApp with sensible defaults
func NewMockAscendApp() *MockAscendApp {
	return &MockAscendApp{
		Calls:      make([]MockCall, 0),
		AppVersion: "1.0.0-test",
	}
}

func (m *MockAscendApp) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCalls returns a copy of all recorded calls
func (m *MockAscendApp) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.Calls...)
}

// ResetCalls clears the call history
func (m *MockAscendApp) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]MockCall, 0)
}

// WasMethodCalled reports whether method was called at least once
func (m *MockAscendApp) WasMethodCalled(method string) bool {
	return m.GetLastCallByMethod(method) != nil
}

// GetLastCallByMethod returns the most recent call of method, or nil
func (m *MockAscendApp) GetLastCallByMethod(method string) *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		if m.Calls[i].Method == method {
			call := m.Calls[i]
			return &call
		}
	}
	return nil
}

// Device

func (m *MockAscendApp) ListDevices() (DeviceList, error) {
	m.recordCall("ListDevices")
	return m.ListDevicesResult, m.ListDevicesError
}

func (m *MockAscendApp) SelectDevice(deviceID string) error {
	m.recordCall("SelectDevice", deviceID)
	return m.SelectDeviceError
}

func (m *MockAscendApp) GetDashboard() (Dashboard, error) {
	m.recordCall("GetDashboard")
	return m.GetDashboardResult, m.GetDashboardError
}

func (m *MockAscendApp) Reboot(mode string) error {
	m.recordCall("Reboot", mode)
	return m.RebootError
}

func (m *MockAscendApp) SendKey(name string) error {
	m.recordCall("SendKey", name)
	return m.SendKeyError
}

func (m *MockAscendApp) SendText(text string) error {
	m.recordCall("SendText", text)
	return m.SendTextError
}

func (m *MockAscendApp) RunQuickCommand(name string) (string, error) {
	m.recordCall("RunQuickCommand", name)
	return m.RunQuickCommandResult, m.RunQuickCommandError
}

func (m *MockAscendApp) GetToggles() (Toggles, error) {
	m.recordCall("GetToggles")
	return m.TogglesResult, m.GetTogglesError
}

func (m *MockAscendApp) SetToggle(name string, on bool) (Toggles, error) {
	m.recordCall("SetToggle", name, on)
	if m.SetToggleError != nil {
		return Toggles{}, m.SetToggleError
	}
	switch name {
	case "layout":
		m.TogglesResult.Layout = on
	case "overdraw":
		m.TogglesResult.Overdraw = on
	case "pointer":
		m.TogglesResult.Pointer = on
	}
	return m.TogglesResult, nil
}

// Apps

func (m *MockAscendApp) ListApps(filter AppFilter) ([]AppRecord, error) {
	m.recordCall("ListApps", filter)
	return m.ListAppsResult, m.ListAppsError
}

func (m *MockAscendApp) RunAppAction(packageName, action string) (string, error) {
	m.recordCall("RunAppAction", packageName, action)
	return m.RunAppActionResult, m.RunAppActionError
}

// Files

func (m *MockAscendApp) ListFiles(dir string) ([]FileEntry, error) {
	m.recordCall("ListFiles", dir)
	return m.ListFilesResult, m.ListFilesError
}

// Session

func (m *MockAscendApp) GetSession() SessionSnapshot {
	m.recordCall("GetSession")
	return m.SessionResult
}

func (m *MockAscendApp) GetSessionLog(level string, limit int) ([]LogEntry, error) {
	m.recordCall("GetSessionLog", level, limit)
	return m.GetSessionLogResult, m.GetSessionLogError
}

func (m *MockAscendApp) GetAppVersion() string {
	m.recordCall("GetAppVersion")
	return m.AppVersion
}

// Common errors for testing
var (
	ErrNoDevice   = errors.New("no device selected")
	ErrAppUnknown = errors.New("unknown package")
)

// SampleApp returns a debloat-joined package record
func SampleApp(id string) AppRecord {
	return AppRecord{
		ID:          id,
		Name:        "Sample App",
		List:        "Oem",
		Description: "Sample description",
		Removal:     "Recommended",
		Safety:      "safe",
	}
}
