// Package parse turns the fixed-format text printed by adb and the device
// shell into structured values. Every function here is pure.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
)

// NotAvailable is shown for any dashboard field that could not be parsed
const NotAvailable = "N/A"

// Prop returns the value of key from `getprop` output, where every line
// reads "[key]: [value]".
func Prop(text, key string) (string, bool) {
	re := regexp.MustCompile(`\[` + regexp.QuoteMeta(key) + `\]: \[(.*?)\]`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var propLinePattern = regexp.MustCompile(`\[([^\]]+)\]: \[(.*?)\]`)

// Props returns every key/value pair of a `getprop` dump
func Props(text string) map[string]string {
	props := make(map[string]string)
	for _, m := range propLinePattern.FindAllStringSubmatch(text, -1) {
		props[m[1]] = m[2]
	}
	return props
}

// Identity is the device block of the dashboard
type Identity struct {
	Model   string
	Brand   string
	Version string
	Build   string
}

// IdentityFromProps extracts model, brand, "Android X (API Y)" and the
// build id from a `getprop` dump.
func IdentityFromProps(text string) Identity {
	get := func(key, fallback string) string {
		if v, ok := Prop(text, key); ok && v != "" {
			return v
		}
		return fallback
	}
	return Identity{
		Model:   get("ro.product.model", NotAvailable),
		Brand:   get("ro.product.brand", NotAvailable),
		Version: fmt.Sprintf("Android %s (API %s)", get("ro.build.version.release", "?"), get("ro.build.version.sdk", "?")),
		Build:   get("ro.build.display.id", NotAvailable),
	}
}

var (
	batteryLevelPattern  = regexp.MustCompile(`level: (\d+)`)
	batteryStatusPattern = regexp.MustCompile(`status: (\d+)`)
)

var batteryStatus = map[string]string{
	"2": "Charging",
	"3": "Discharging",
	"4": "Not Charging",
	"5": "Full",
}

// Battery renders `dumpsys battery` as "85% (Charging)"
func Battery(text string) string {
	level := batteryLevelPattern.FindStringSubmatch(text)
	if level == nil {
		return NotAvailable
	}
	status := "Unknown"
	if m := batteryStatusPattern.FindStringSubmatch(text); m != nil {
		if s, ok := batteryStatus[m[1]]; ok {
			status = s
		}
	}
	return fmt.Sprintf("%s%% (%s)", level[1], status)
}

var (
	inetPattern  = regexp.MustCompile(`inet (\d+\.\d+\.\d+\.\d+)`)
	etherPattern = regexp.MustCompile(`link/ether ([\da-fA-F:]+)`)
)

// Network returns the first IPv4 address and MAC address of an
// `ip addr show` dump.
func Network(text string) (ip, mac string) {
	ip, mac = NotAvailable, NotAvailable
	if m := inetPattern.FindStringSubmatch(text); m != nil {
		ip = m[1]
	}
	if m := etherPattern.FindStringSubmatch(text); m != nil {
		mac = m[1]
	}
	return ip, mac
}

var cpuLoadPattern = regexp.MustCompile(`Load: ([\d.]+)`)

// CPULoad returns the load figure of `dumpsys cpuinfo`
func CPULoad(text string) string {
	if m := cpuLoadPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return NotAvailable
}

var (
	memTotalPattern     = regexp.MustCompile(`MemTotal:\s+(\d+) kB`)
	memAvailablePattern = regexp.MustCompile(`MemAvailable:\s+(\d+) kB`)
)

// Memory is the RAM usage derived from /proc/meminfo
type Memory struct {
	TotalKB     int64
	AvailableKB int64
	UsedKB      int64
	Percent     string // one decimal, e.g. "75.0"
	Text        string // "5.72 GB / 7.63 GB"
}

// MemoryUsage parses /proc/meminfo. ok is false unless both MemTotal and
// MemAvailable are present and non-zero.
func MemoryUsage(text string) (Memory, bool) {
	total := matchInt(memTotalPattern, text)
	available := matchInt(memAvailablePattern, text)
	if total == 0 || available == 0 {
		return Memory{}, false
	}

	used := total - available
	percent := float64(used) / float64(total) * 100
	return Memory{
		TotalKB:     total,
		AvailableKB: available,
		UsedKB:      used,
		Percent:     strconv.FormatFloat(percent, 'f', 1, 64),
		Text:        fmt.Sprintf("%.2f GB / %.2f GB", kbToGB(used), kbToGB(total)),
	}, true
}

func kbToGB(kb int64) float64 {
	return float64(kb) / 1024 / 1024
}

func matchInt(re *regexp.Regexp, text string) int64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var (
	screenSizePattern    = regexp.MustCompile(`Physical size: ([\dx]+)`)
	screenDensityPattern = regexp.MustCompile(`Physical density: (\d+)`)
)

// ScreenSize returns the physical size from `wm size`, e.g. "1080x2400"
func ScreenSize(text string) string {
	if m := screenSizePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return NotAvailable
}

// ScreenDensity returns the physical density from `wm density` as "420 dpi"
func ScreenDensity(text string) string {
	if m := screenDensityPattern.FindStringSubmatch(text); m != nil {
		return m[1] + " dpi"
	}
	return NotAvailable
}
