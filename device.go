package main

import (
	"fmt"
	"net"
	"path"
	"regexp"
	"strings"
	"time"

	"Ascend/pkg/bridge"
	"Ascend/pkg/parse"
	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"
)

// deviceIDPattern accepts the id formats adb prints:
// - USB serials such as "1234567890ABCDEF" or "emulator-5554"
// - wireless devices as "192.168.1.100:5555"
// - mDNS names such as "adb-xxxxx._adb-tls-connect._tcp."
var deviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:\-]+$`)

// ValidateDeviceID rejects ids that could not have come from `adb devices`
func ValidateDeviceID(deviceId string) error {
	if deviceId == "" {
		return fmt.Errorf("device ID cannot be empty")
	}
	if len(deviceId) > 256 {
		return fmt.Errorf("device ID too long (max 256 characters)")
	}
	if !deviceIDPattern.MatchString(deviceId) {
		return fmt.Errorf("invalid device ID format: contains illegal characters")
	}
	return nil
}

// wirelessPort is the port `adb tcpip` switches the device to
const wirelessPort = "5555"

// RebootMode is a target of `adb reboot`
type RebootMode string

const (
	RebootSystem     RebootMode = "system"
	RebootRecovery   RebootMode = "recovery"
	RebootBootloader RebootMode = "bootloader"
)

func (m RebootMode) args() ([]string, error) {
	switch m {
	case RebootSystem, "":
		return []string{"reboot"}, nil
	case RebootRecovery, RebootBootloader:
		return []string{"reboot", string(m)}, nil
	}
	return nil, fmt.Errorf("unknown reboot mode %q", m)
}

// Reboot restarts the device into mode. It needs confirm.
func (a *App) Reboot(mode string, confirm bool) error {
	args, err := RebootMode(mode).args()
	if err != nil {
		return err
	}
	if !confirm {
		return ErrCancelled
	}
	if _, err := a.runCommand(args, false, bridge.Key{}); err != nil {
		return err
	}
	LogUserAction(ActionReboot, a.state.CurrentDevice(), map[string]interface{}{"mode": mode})
	return nil
}

// EnableWireless switches the selected device to TCP/IP on port 5555
func (a *App) EnableWireless() error {
	if _, err := a.runCommand([]string{"tcpip", wirelessPort}, false, bridge.Key{}); err != nil {
		return err
	}
	LogUserAction(ActionWirelessEnable, a.state.CurrentDevice(), nil)
	a.logSession(sessionlog.Success, "Enabled wireless ADB on port 5555. Connect to your device's IP address.")
	return nil
}

// ConnectWireless connects to a device at host, on port 5555 unless host
// names a port itself.
func (a *App) ConnectWireless(host string) error {
	addr, err := wirelessAddress(host)
	if err != nil {
		return err
	}
	_, err = a.runCommand([]string{"connect", addr}, false, bridge.Key{})
	return err
}

func wirelessAddress(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, wirelessPort)
	}
	if err := ValidateDeviceID(host); err != nil {
		return "", fmt.Errorf("invalid address %q", host)
	}
	return host, nil
}

// TakeScreenshot captures the screen to a path picked in the save dialog
// and returns that path. Capture, download and cleanup run in order after
// this returns.
func (a *App) TakeScreenshot() (string, error) {
	dest, _, err := a.takeScreenshot()
	return dest, err
}

// takeScreenshot returns a channel closed after the last step
func (a *App) takeScreenshot() (string, <-chan struct{}, error) {
	if a.state.CurrentDevice() == "" {
		a.logSession(sessionlog.Error, "No device selected. Command aborted.")
		return "", nil, ErrNoDevice
	}

	remote := fmt.Sprintf("/sdcard/screenshot_%d.png", time.Now().UnixMilli())
	dest, err := a.chooseSavePath("Save Screenshot", path.Base(remote))
	if err != nil {
		return "", nil, err
	}

	a.logSession(sessionlog.Info, "Taking screenshot...")
	capture, err := a.shell(false, bridge.Key{}, "screencap", "-p", remote)
	if err != nil {
		return "", nil, err
	}
	LogUserAction(ActionScreenshot, a.state.CurrentDevice(), map[string]interface{}{"local": dest})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if out, err := capture.Wait(a.runCtx); err != nil || out.Failed() {
			return
		}

		a.logSession(sessionlog.Info, "Downloading screenshot...")
		pull, err := a.runCommand([]string{"pull", remote, dest}, false, bridge.Key{})
		if err != nil {
			return
		}
		pulled, err := pull.Wait(a.runCtx)
		if err != nil {
			return
		}

		if cleanup, err := a.shell(true, bridge.Key{}, "rm", remote); err == nil {
			cleanup.Wait(a.runCtx)
		}
		if !pulled.Failed() {
			a.logSession(sessionlog.Success, "Screenshot saved to "+dest)
		}
	}()
	return dest, done, nil
}

var (
	resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)
	densityPattern    = regexp.MustCompile(`^\d+$`)
)

// SetScreenProps overrides the screen size ("1080x1920") and/or density
// ("420"). Size is applied before density. Empty values are skipped.
func (a *App) SetScreenProps(resolution, density string) error {
	_, err := a.setScreenProps(resolution, density)
	return err
}

func (a *App) setScreenProps(resolution, density string) (<-chan struct{}, error) {
	resolution, density = strings.TrimSpace(resolution), strings.TrimSpace(density)
	if resolution != "" && !resolutionPattern.MatchString(resolution) {
		return nil, fmt.Errorf("invalid resolution %q, expected WIDTHxHEIGHT", resolution)
	}
	if density != "" && !densityPattern.MatchString(density) {
		return nil, fmt.Errorf("invalid density %q", density)
	}
	if resolution == "" && density == "" {
		return closedChan(), nil
	}

	LogUserAction(ActionScreenChange, a.state.CurrentDevice(), map[string]interface{}{
		"resolution": resolution,
		"density":    density,
	})
	return a.screenSequence(resolution, density)
}

// ResetScreenProps restores the default size and density. It needs confirm.
func (a *App) ResetScreenProps(confirm bool) error {
	_, err := a.resetScreenProps(confirm)
	return err
}

func (a *App) resetScreenProps(confirm bool) (<-chan struct{}, error) {
	if !confirm {
		return nil, ErrCancelled
	}
	LogUserAction(ActionScreenChange, a.state.CurrentDevice(), map[string]interface{}{"reset": true})
	return a.screenSequence("reset", "reset")
}

// screenSequence runs `wm size` then `wm density`, each only when set
func (a *App) screenSequence(size, density string) (<-chan struct{}, error) {
	var first *bridge.Pending
	if size != "" {
		p, err := a.shell(false, bridge.Key{}, "wm", "size", size)
		if err != nil {
			return nil, err
		}
		first = p
	} else if a.state.CurrentDevice() == "" {
		a.logSession(sessionlog.Error, "No device selected. Command aborted.")
		return nil, ErrNoDevice
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if first != nil {
			if _, err := first.Wait(a.runCtx); err != nil {
				return
			}
		}
		if density == "" {
			return
		}
		if p, err := a.shell(false, bridge.Key{}, "wm", "density", density); err == nil {
			p.Wait(a.runCtx)
		}
	}()
	return done, nil
}

// QuickCommand is a canned shell command whose output goes to the dumpsys box
type QuickCommand struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

var quickCommands = []QuickCommand{
	{"Battery Stats", "dumpsys battery"},
	{"Display Info", "dumpsys display"},
	{"Memory Info", "dumpsys meminfo"},
	{"Active Services", "dumpsys activity services"},
	{"Get All Props", "getprop"},
}

// GetQuickCommands lists the canned commands in menu order
func (a *App) GetQuickCommands() []QuickCommand {
	return append([]QuickCommand(nil), quickCommands...)
}

// RunQuickCommand runs a canned command by name
func (a *App) RunQuickCommand(name string) error {
	_, err := a.runQuickCommand(name)
	return err
}

func (a *App) runQuickCommand(name string) (*bridge.Pending, error) {
	for _, qc := range quickCommands {
		if qc.Name == name {
			return a.shell(false, bridge.DumpsysKey(), strings.Fields(qc.Command)...)
		}
	}
	return nil, fmt.Errorf("unknown quick command %q", name)
}

// toggleNames is the fixed order toggles are read in
var toggleNames = []string{"layout", "overdraw", "pointer"}

// checkAllToggleStates reads every developer toggle in the background
func (a *App) checkAllToggleStates() []*bridge.Pending {
	if a.state.CurrentDevice() == "" {
		return nil
	}
	pending := make([]*bridge.Pending, 0, len(toggleNames))
	for _, name := range toggleNames {
		p, err := a.shell(true, bridge.ToggleKey(name), "getprop", parse.ToggleProps[name])
		if err != nil {
			return pending
		}
		pending = append(pending, p)
	}
	return pending
}

// GetToggles returns the last known developer toggle states
func (a *App) GetToggles() types.Toggles {
	return a.state.Toggles()
}

// handleToggle records one getprop read
func (a *App) handleToggle(out bridge.Output) error {
	name := out.Key.Name
	if !a.state.SetToggle(name, parse.ToggleOn(name, out.Message)) {
		return fmt.Errorf("unknown toggle %q", name)
	}
	a.emit(eventToggles, a.state.Toggles())
	return nil
}

// SetToggle turns a developer toggle on or off, then pokes the activity
// manager so running apps pick up the new property.
func (a *App) SetToggle(name string, on bool) error {
	_, err := a.setToggle(name, on)
	return err
}

// FlipToggle inverts a developer toggle and returns its new state
func (a *App) FlipToggle(name string) (bool, error) {
	on := !a.state.Toggle(name)
	if _, err := a.setToggle(name, on); err != nil {
		return !on, err
	}
	return on, nil
}

func (a *App) setToggle(name string, on bool) (<-chan struct{}, error) {
	prop, ok := parse.ToggleProps[name]
	if !ok {
		return nil, fmt.Errorf("unknown toggle %q", name)
	}

	value := "false"
	if on {
		value = "1"
		if name == "overdraw" {
			value = "show"
		}
	}

	p, err := a.shell(false, bridge.Key{}, "setprop", prop, value)
	if err != nil {
		return nil, err
	}
	a.state.SetToggle(name, on)
	a.emit(eventToggles, a.state.Toggles())
	LogUserAction(ActionToggle, a.state.CurrentDevice(), map[string]interface{}{"toggle": name, "on": on})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Wait(a.runCtx); err != nil {
			return
		}
		if poke, err := a.shell(true, bridge.Key{}, "service", "call", "activity", "1599295570"); err == nil {
			poke.Wait(a.runCtx)
		}
	}()
	return done, nil
}
