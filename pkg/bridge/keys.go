// Package bridge runs debug-bridge commands and routes their output.
//
// A Runner spawns each Request asynchronously and hands back a Pending
// handle. When the process exits, the Router runs the handler registered
// for the request's Key kind, releases the busy count held by that request
// and resolves the handle. Handlers never run concurrently.
package bridge

import "strings"

// Kind selects which handler receives a command's output
type Kind int

const (
	// KindLog is the zero value: output goes to the session log.
	KindLog Kind = iota
	KindDeviceList
	KindDashboard
	KindFileList
	KindAppList
	KindToggle
	KindDumpsys
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindDeviceList:
		return "device-list"
	case KindDashboard:
		return "dashboard"
	case KindFileList:
		return "file-list"
	case KindAppList:
		return "app-list"
	case KindToggle:
		return "toggle"
	case KindDumpsys:
		return "dumpsys"
	case KindBatch:
		return "batch"
	default:
		return "log"
	}
}

// Key is the typed correlation key of a request. Name carries the
// dashboard field, toggle name or batch action for the kinds that need one.
type Key struct {
	Kind Kind
	Name string
}

// Legacy wire names, still used in event payloads and logs
const (
	deviceListName  = "adb-devices"
	fileListName    = "device-ls"
	appListName     = "list-apps"
	dumpsysName     = "dumpsys"
	dashboardPrefix = "dashboard-"
	togglePrefix    = "toggle-"
	batchPrefix     = "batch-"
)

func DeviceListKey() Key            { return Key{Kind: KindDeviceList} }
func DashboardKey(field string) Key { return Key{Kind: KindDashboard, Name: field} }
func FileListKey() Key              { return Key{Kind: KindFileList} }
func AppListKey() Key               { return Key{Kind: KindAppList} }
func ToggleKey(name string) Key     { return Key{Kind: KindToggle, Name: name} }
func DumpsysKey() Key               { return Key{Kind: KindDumpsys} }
func BatchKey(action string) Key    { return Key{Kind: KindBatch, Name: action} }

// IsZero reports whether the key routes to the session log
func (k Key) IsZero() bool {
	return k.Kind == KindLog
}

// String returns the legacy string form of the key
func (k Key) String() string {
	switch k.Kind {
	case KindDeviceList:
		return deviceListName
	case KindDashboard:
		return dashboardPrefix + k.Name
	case KindFileList:
		return fileListName
	case KindAppList:
		return appListName
	case KindToggle:
		return togglePrefix + k.Name
	case KindDumpsys:
		if k.Name != "" {
			return k.Name
		}
		return dumpsysName
	case KindBatch:
		return batchPrefix + k.Name
	default:
		return ""
	}
}

// ParseKey maps a legacy string key to its typed form. Matching follows the
// router precedence: device list, dashboard prefix, file list, app list,
// toggle prefix, batch prefix, then any other non-empty key is a dumpsys
// box key and the empty string is the log.
func ParseKey(s string) Key {
	switch {
	case s == "":
		return Key{}
	case s == deviceListName:
		return DeviceListKey()
	case strings.HasPrefix(s, dashboardPrefix):
		return DashboardKey(strings.TrimPrefix(s, dashboardPrefix))
	case s == fileListName:
		return FileListKey()
	case s == appListName:
		return AppListKey()
	case strings.HasPrefix(s, togglePrefix):
		return ToggleKey(strings.TrimPrefix(s, togglePrefix))
	case strings.HasPrefix(s, batchPrefix):
		return BatchKey(strings.TrimPrefix(s, batchPrefix))
	case s == dumpsysName:
		return DumpsysKey()
	default:
		return Key{Kind: KindDumpsys, Name: s}
	}
}
