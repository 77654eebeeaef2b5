// Package debloat loads the curated package database and joins it against
// the packages installed on a device.
package debloat

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"Ascend/pkg/types"

	"github.com/tidwall/gjson"
)

var (
	ErrNotArray = errors.New("debloat db must be an array of objects")
	ErrNoID     = errors.New("record has no id")
)

// Entry is one curated record
type Entry struct {
	ID           string
	Name         string
	List         string
	Description  string
	Dependencies []string
	NeededBy     []string
	Labels       []string
	Removal      string
	Safety       types.Safety
}

// DB is the read-only package database keyed by package id
type DB struct {
	entries map[string]Entry
	skipped int
}

// Empty returns a database with no records
func Empty() *DB {
	return &DB{entries: make(map[string]Entry)}
}

// Load reads and parses the database file at path
func Load(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read debloat db: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON array of records. Records without an id are
// skipped; anything other than an array is rejected.
func Parse(data []byte) (*DB, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse debloat db: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotArray
	}

	db := Empty()
	root.ForEach(func(_, item gjson.Result) bool {
		e, err := parseEntry(item)
		if err != nil {
			db.skipped++
			return true
		}
		db.entries[e.ID] = e
		return true
	})
	return db, nil
}

func parseEntry(item gjson.Result) (Entry, error) {
	if !item.IsObject() {
		return Entry{}, ErrNoID
	}
	id := item.Get("id").String()
	if id == "" {
		return Entry{}, ErrNoID
	}

	list := item.Get("list").String()
	name := firstNonEmpty(item.Get("name").String(), list, lastSegment(id))
	removal := item.Get("removal").String()
	return Entry{
		ID:           id,
		Name:         name,
		List:         list,
		Description:  item.Get("description").String(),
		Dependencies: stringArray(item.Get("dependencies")),
		NeededBy:     stringArray(item.Get("neededBy")),
		Labels:       stringArray(item.Get("labels")),
		Removal:      removal,
		Safety:       SafetyFrom(firstNonEmpty(item.Get("safety").String(), removal)),
	}, nil
}

// Len returns the number of records
func (db *DB) Len() int {
	return len(db.entries)
}

// Skipped returns the number of records dropped while parsing
func (db *DB) Skipped() int {
	return db.skipped
}

// Lookup returns the record for a package id
func (db *DB) Lookup(id string) (Entry, bool) {
	e, ok := db.entries[id]
	return e, ok
}

// SafetyFrom maps the raw safety or removal string of a record to a
// safety class.
func SafetyFrom(raw string) types.Safety {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "recommended", "safe")
	switch s {
	case "safe":
		return types.SafetySafe
	case "caution", "advanced":
		return types.SafetyCaution
	case "unsafe", "expert":
		return types.SafetyUnsafe
	default:
		return types.SafetyUnknown
	}
}

// Join builds the app list for the installed packages, sorted by id.
// Packages missing from the database get placeholder values.
func (db *DB) Join(pkgs []string) []types.AppRecord {
	apps := make([]types.AppRecord, 0, len(pkgs))
	for _, pkg := range pkgs {
		e, ok := db.entries[pkg]
		if !ok {
			e = Entry{ID: pkg, Name: lastSegment(pkg), Safety: types.SafetyUnknown}
		}
		apps = append(apps, types.AppRecord{
			ID:           pkg,
			Name:         e.Name,
			List:         firstNonEmpty(e.List, "Unknown"),
			Description:  firstNonEmpty(e.Description, "No description available."),
			Dependencies: nonNil(e.Dependencies),
			NeededBy:     nonNil(e.NeededBy),
			Labels:       nonNil(e.Labels),
			Removal:      strings.ToLower(firstNonEmpty(e.Removal, "unknown")),
			Safety:       e.Safety,
		})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

func stringArray(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, v := range r.Array() {
		if s := v.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}
