package parse

import (
	"sort"
	"strings"

	"Ascend/pkg/types"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Listing parses `ls -F` output. Error lines, the "total" header and the
// dot entries are dropped; a trailing "/" marks a directory.
func Listing(text string) []types.FileEntry {
	var entries []types.FileEntry
	for _, line := range strings.Split(text, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || name == "." || name == ".." ||
			strings.HasPrefix(name, "ls:") || strings.HasPrefix(name, "total") {
			continue
		}
		entries = append(entries, types.FileEntry{
			Name:  strings.TrimSuffix(name, "/"),
			IsDir: strings.HasSuffix(name, "/"),
		})
	}
	SortEntries(entries)
	return entries
}

// SortEntries orders directories first, then by name ignoring case with
// digit runs compared numerically ("file2" before "file10").
func SortEntries(entries []types.FileEntry) {
	c := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return c.CompareString(entries[i].Name, entries[j].Name) < 0
	})
}

// Packages parses `pm list packages` into sorted package names
func Packages(text string) []string {
	var pkgs []string
	for _, line := range strings.Split(text, "\n") {
		pkg := strings.TrimSpace(strings.Replace(line, "package:", "", 1))
		if pkg != "" {
			pkgs = append(pkgs, pkg)
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// DeviceList parses `adb devices`. The header line is skipped and only
// lines mentioning "device" count, so offline and unauthorized entries
// are left out. Order follows the tool's output.
func DeviceList(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	ids := []string{}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || !strings.Contains(line, "device") {
			continue
		}
		id := strings.TrimSpace(strings.SplitN(line, "\t", 2)[0])
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ToggleProps maps each developer toggle to the system property backing it
var ToggleProps = map[string]string{
	"layout":   "debug.hwui.layout",
	"overdraw": "debug.hwui.show_overdraw",
	"pointer":  "debug.hwui.pointer_location",
}

// ToggleOn reports whether a getprop response means the toggle is enabled
func ToggleOn(name, text string) bool {
	if strings.Contains(text, "true") || strings.Contains(text, "1") {
		return true
	}
	return name == "overdraw" && strings.Contains(text, "show")
}
