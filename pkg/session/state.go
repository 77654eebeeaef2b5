// Package session holds the per-window device session: the selected
// device, the device list, and the state each section works against.
package session

import (
	"sort"
	"sync"

	"Ascend/pkg/types"
)

// DefaultPath is where the file browser starts
const DefaultPath = "/sdcard/"

// Placeholder is shown in dashboard fields while a refresh is in flight
const Placeholder = "..."

// State is the explicit session state shared by the section controllers.
// All methods are safe for concurrent use.
type State struct {
	mu sync.RWMutex

	currentDevice string
	devices       []string
	activeTab     types.Tab

	defaultPath  string
	currentPath  string
	selectedFile string
	files        []types.FileEntry

	toggles   types.Toggles
	dashboard types.Dashboard

	appFilter types.AppFilter
	apps      []types.AppRecord
	selected  map[string]struct{}
}

// NewState returns an empty session on the dashboard tab
func NewState(defaultPath string) *State {
	if defaultPath == "" {
		defaultPath = DefaultPath
	}
	return &State{
		activeTab:   types.TabDashboard,
		defaultPath: defaultPath,
		currentPath: defaultPath,
		dashboard:   ClearedDashboard(Placeholder),
		appFilter:   types.AppFilter{Scope: "all", Safety: "all", OEM: "all"},
		selected:    make(map[string]struct{}),
	}
}

// ClearedDashboard returns a dashboard with every field set to text
func ClearedDashboard(text string) types.Dashboard {
	return types.Dashboard{
		Model: text, Brand: text, Version: text, Build: text,
		Battery: text, IP: text, MAC: text, CPU: text,
		RAM: text, RAMPercent: "0", Resolution: text, Density: text,
	}
}

func (s *State) CurrentDevice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDevice
}

// SetCurrentDevice selects id and reports whether the selection changed
func (s *State) SetCurrentDevice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentDevice == id {
		return false
	}
	s.currentDevice = id
	return true
}

func (s *State) Devices() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.devices...)
}

// HasDevice reports whether id is in the current device list
func (s *State) HasDevice(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if d == id {
			return true
		}
	}
	return false
}

func (s *State) ActiveTab() types.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

func (s *State) SetActiveTab(tab types.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = tab
}

func (s *State) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPath
}

// SetCurrentPath moves the file browser and clears the file selection
func (s *State) SetCurrentPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPath = path
	s.selectedFile = ""
}

func (s *State) SelectedFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFile
}

func (s *State) SelectFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFile = name
}

func (s *State) Files() []types.FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.FileEntry(nil), s.files...)
}

func (s *State) SetFiles(files []types.FileEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = files
}

func (s *State) Toggles() types.Toggles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggles
}

// SetToggle records the state of one developer toggle. Unknown names are
// ignored and reported as false.
func (s *State) SetToggle(name string, on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case "layout":
		s.toggles.Layout = on
	case "overdraw":
		s.toggles.Overdraw = on
	case "pointer":
		s.toggles.Pointer = on
	default:
		return false
	}
	return true
}

// Toggle returns the stored state of one developer toggle
func (s *State) Toggle(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch name {
	case "layout":
		return s.toggles.Layout
	case "overdraw":
		return s.toggles.Overdraw
	case "pointer":
		return s.toggles.Pointer
	}
	return false
}

func (s *State) Dashboard() types.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dashboard
}

// UpdateDashboard applies fn to the dashboard under the lock
func (s *State) UpdateDashboard(fn func(d *types.Dashboard)) types.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.dashboard)
	return s.dashboard
}

func (s *State) AppFilter() types.AppFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appFilter
}

func (s *State) SetAppFilter(f types.AppFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appFilter = f
}

func (s *State) Apps() []types.AppRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.AppRecord(nil), s.apps...)
}

// SetApps replaces the app list and clears the selection
func (s *State) SetApps(apps []types.AppRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = apps
	s.selected = make(map[string]struct{})
}

// SetSelected marks a package as selected or not
func (s *State) SetSelected(pkg string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected[pkg] = struct{}{}
	} else {
		delete(s.selected, pkg)
	}
}

// Selection returns the selected package ids in sorted order
func (s *State) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.selected))
	for pkg := range s.selected {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// ResetDevice drops everything scoped to the current device
func (s *State) ResetDevice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDeviceLocked()
}

// resetDeviceLocked requires s.mu held for writing
func (s *State) resetDeviceLocked() {
	s.currentDevice = ""
	s.currentPath = s.defaultPath
	s.selectedFile = ""
	s.files = nil
	s.toggles = types.Toggles{}
	s.apps = nil
	s.selected = make(map[string]struct{})
	s.dashboard = ClearedDashboard(Placeholder)
}

// Snapshot returns a copy of the observable state
func (s *State) Snapshot(busy bool) types.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.SessionSnapshot{
		CurrentDevice: s.currentDevice,
		Devices:       append([]string{}, s.devices...),
		ActiveTab:     s.activeTab,
		Busy:          busy,
		CurrentPath:   s.currentPath,
		Toggles:       s.toggles,
		AppFilter:     s.appFilter,
		Dashboard:     s.dashboard,
	}
}
