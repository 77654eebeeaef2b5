package types

// Tab identifies the visible section of the window
type Tab string

const (
	TabDashboard Tab = "dashboard-tab"
	TabApps      Tab = "apps-tab"
	TabFiles     Tab = "files-tab"
	TabDevice    Tab = "device-tab"
)

// Dashboard holds the rendered dashboard fields for the current device
type Dashboard struct {
	Model      string `json:"model"`
	Brand      string `json:"brand"`
	Version    string `json:"version"`
	Build      string `json:"build"`
	Battery    string `json:"battery"`
	IP         string `json:"ip"`
	MAC        string `json:"mac"`
	CPU        string `json:"cpu"`
	RAM        string `json:"ram"`
	RAMPercent string `json:"ramPercent"`
	Resolution string `json:"resolution"`
	Density    string `json:"density"`
}

// Safety is the curated removal risk of a package
type Safety string

const (
	SafetyUnknown Safety = "unknown"
	SafetySafe    Safety = "safe"
	SafetyCaution Safety = "caution"
	SafetyUnsafe  Safety = "unsafe"
)

// AppRecord is an installed package joined against the debloat database
type AppRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	List         string   `json:"list"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
	NeededBy     []string `json:"neededBy"`
	Labels       []string `json:"labels"`
	Removal      string   `json:"removal"`
	Safety       Safety   `json:"safety"`
}

// AppFilter narrows the app list
type AppFilter struct {
	Scope  string `json:"scope"` // "all", "system" or "user"
	Safety string `json:"safety"`
	OEM    string `json:"oem"`
	Search string `json:"search"`
}

// FileEntry is one line of a device directory listing
type FileEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"isDir"`
}

// Toggles mirrors the developer flags read from the device
type Toggles struct {
	Layout   bool `json:"layout"`
	Overdraw bool `json:"overdraw"`
	Pointer  bool `json:"pointer"`
}

// LogEntry is one line of the user-visible session log
type LogEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix ms
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// ScrcpyConfig contains screen mirroring options
type ScrcpyConfig struct {
	BitRate         int  `json:"bitRate"` // Mbps, 0 keeps the scrcpy default
	Record          bool `json:"record"`
	Fullscreen      bool `json:"fullscreen"`
	TurnScreenOff   bool `json:"turnScreenOff"`
	ShowTouches     bool `json:"showTouches"`
	StayAwake       bool `json:"stayAwake"`
	PowerOffOnClose bool `json:"powerOffOnClose"`
}

// SessionSnapshot is the observable session state sent to the frontend
type SessionSnapshot struct {
	CurrentDevice string    `json:"currentDevice"`
	Devices       []string  `json:"devices"`
	ActiveTab     Tab       `json:"activeTab"`
	Busy          bool      `json:"busy"`
	CurrentPath   string    `json:"currentPath"`
	Toggles       Toggles   `json:"toggles"`
	AppFilter     AppFilter `json:"appFilter"`
	Dashboard     Dashboard `json:"dashboard"`
}
