package debloat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"Ascend/pkg/types"
)

const sampleDB = `[
  {"id": "com.facebook.katana", "list": "Misc", "description": "Facebook app", "removal": "Recommended", "labels": ["social"]},
  {"id": "com.android.phone", "name": "Phone", "list": "Aosp", "removal": "Unsafe", "neededBy": ["com.android.dialer"]},
  {"id": "com.samsung.bixby", "list": "Oem", "safety": "advanced", "removal": "Advanced"},
  {"name": "no id here"},
  "not an object"
]`

func TestParseDropsRecordsWithoutID(t *testing.T) {
	db, err := Parse([]byte(sampleDB))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if db.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", db.Len())
	}
	if db.Skipped() != 2 {
		t.Errorf("Expected 2 skipped records, got %d", db.Skipped())
	}
}

func TestParseRejectsNonArray(t *testing.T) {
	if _, err := Parse([]byte(`{"id": "x"}`)); !errors.Is(err, ErrNotArray) {
		t.Errorf("Expected ErrNotArray, got %v", err)
	}
	if _, err := Parse([]byte(`[{`)); err == nil {
		t.Error("Expected an error for invalid JSON")
	}
}

func TestEntryDefaults(t *testing.T) {
	db, _ := Parse([]byte(sampleDB))

	fb, ok := db.Lookup("com.facebook.katana")
	if !ok {
		t.Fatal("Missing com.facebook.katana")
	}
	if fb.Name != "Misc" {
		t.Errorf("Name should fall back to list, got %q", fb.Name)
	}
	if fb.Safety != types.SafetySafe {
		t.Errorf("Recommended should map to safe, got %q", fb.Safety)
	}

	phone, _ := db.Lookup("com.android.phone")
	if phone.Name != "Phone" || phone.Safety != types.SafetyUnsafe {
		t.Errorf("Unexpected phone entry %+v", phone)
	}

	db2, _ := Parse([]byte(`[{"id": "com.example.widget"}]`))
	w, _ := db2.Lookup("com.example.widget")
	if w.Name != "widget" || w.Safety != types.SafetyUnknown {
		t.Errorf("Unexpected defaults %+v", w)
	}
}

func TestSafetyFrom(t *testing.T) {
	cases := map[string]types.Safety{
		"Recommended": types.SafetySafe,
		"safe":        types.SafetySafe,
		"Advanced":    types.SafetyCaution,
		"caution":     types.SafetyCaution,
		"Expert":      types.SafetyUnsafe,
		"unsafe":      types.SafetyUnsafe,
		"":            types.SafetyUnknown,
		"whatever":    types.SafetyUnknown,
	}
	for raw, want := range cases {
		if got := SafetyFrom(raw); got != want {
			t.Errorf("SafetyFrom(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	db, _ := Parse([]byte(sampleDB))
	apps := db.Join([]string{"com.unknown.app", "com.facebook.katana"})

	if len(apps) != 2 || apps[0].ID != "com.facebook.katana" {
		t.Fatalf("Expected apps sorted by id, got %+v", apps)
	}
	fb := apps[0]
	if fb.Removal != "recommended" || fb.List != "Misc" || len(fb.Labels) != 1 {
		t.Errorf("Unexpected joined record %+v", fb)
	}

	unknown := apps[1]
	if unknown.List != "Unknown" || unknown.Description != "No description available." || unknown.Removal != "unknown" {
		t.Errorf("Unexpected defaults %+v", unknown)
	}
	if unknown.Name != "app" || unknown.Dependencies == nil {
		t.Errorf("Unexpected name or nil slice %+v", unknown)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debloat_db.json")
	if err := os.WriteFile(path, []byte(sampleDB), 0644); err != nil {
		t.Fatal(err)
	}
	db, err := Load(path)
	if err != nil || db.Len() != 3 {
		t.Fatalf("Load = %v, %v", db, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
