package debloat

import (
	"sort"
	"strings"

	"Ascend/pkg/types"
)

// FilterAll is the filter value that matches everything
const FilterAll = "all"

// Filter returns the apps matching the safety, OEM list and search fields
// of f. The scope field is applied on the device by the list command.
func Filter(apps []types.AppRecord, f types.AppFilter) []types.AppRecord {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]types.AppRecord, 0, len(apps))
	for _, app := range apps {
		if !matches(f.Safety, app.Removal) || !matches(f.OEM, app.List) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(app.ID), search) &&
			!strings.Contains(strings.ToLower(app.Name), search) {
			continue
		}
		out = append(out, app)
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

// FilterOptions holds the sorted distinct values for the dropdowns
type FilterOptions struct {
	Lists    []string `json:"lists"`
	Removals []string `json:"removals"`
}

// Options collects the distinct OEM lists and removal values of apps
func Options(apps []types.AppRecord) FilterOptions {
	lists := make(map[string]struct{})
	removals := make(map[string]struct{})
	for _, app := range apps {
		lists[app.List] = struct{}{}
		removals[app.Removal] = struct{}{}
	}
	return FilterOptions{Lists: sortedKeys(lists), Removals: sortedKeys(removals)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
