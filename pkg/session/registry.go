package session

import (
	"Ascend/pkg/parse"
)

// DeviceChange describes what a device-list update did to the session
type DeviceChange struct {
	Changed bool     // the list differs from the previous one
	Devices []string // the new list
	Current string   // selected device after the update, "" when none

	// Reselected is set when the previous selection vanished and a new
	// device was picked, so the active view needs a refresh.
	Reselected bool
	// Emptied is set when no devices remain
	Emptied bool
}

// Registry applies device-list output to the session state
type Registry struct {
	state *State
}

func NewRegistry(state *State) *Registry {
	return &Registry{state: state}
}

// Populate parses `adb devices` output and updates the device list. An
// identical list is a no-op. When the selected device disappears the
// first listed device is selected; when the list empties all
// device-scoped state is reset.
func (r *Registry) Populate(raw string) DeviceChange {
	ids := parse.DeviceList(raw)

	s := r.state
	s.mu.Lock()
	if equalIDs(ids, s.devices) {
		current := s.currentDevice
		s.mu.Unlock()
		return DeviceChange{Devices: ids, Current: current}
	}
	s.devices = ids

	change := DeviceChange{Changed: true, Devices: append([]string(nil), ids...)}
	if len(ids) == 0 {
		s.resetDeviceLocked()
		s.mu.Unlock()
		change.Emptied = true
		return change
	}

	if !contains(ids, s.currentDevice) {
		s.currentDevice = ids[0]
		change.Reselected = true
	}
	change.Current = s.currentDevice
	s.mu.Unlock()
	return change
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
