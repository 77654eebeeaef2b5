package session

import (
	"reflect"
	"testing"

	"Ascend/pkg/types"
)

func TestStateDefaults(t *testing.T) {
	s := NewState("")
	if s.CurrentPath() != DefaultPath {
		t.Errorf("CurrentPath = %q", s.CurrentPath())
	}
	if s.ActiveTab() != types.TabDashboard {
		t.Errorf("ActiveTab = %q", s.ActiveTab())
	}
	if f := s.AppFilter(); f.Scope != "all" || f.Safety != "all" || f.OEM != "all" {
		t.Errorf("AppFilter = %+v", f)
	}
}

func TestStateSelection(t *testing.T) {
	s := NewState("")
	s.SetSelected("com.b", true)
	s.SetSelected("com.a", true)
	s.SetSelected("com.c", true)
	s.SetSelected("com.c", false)

	if got := s.Selection(); !reflect.DeepEqual(got, []string{"com.a", "com.b"}) {
		t.Errorf("Selection = %v", got)
	}

	s.SetApps(nil)
	if len(s.Selection()) != 0 {
		t.Error("Replacing the app list should clear the selection")
	}
}

func TestStateToggles(t *testing.T) {
	s := NewState("")
	if !s.SetToggle("overdraw", true) {
		t.Fatal("overdraw should be a known toggle")
	}
	if s.SetToggle("bogus", true) {
		t.Error("Unknown toggle should be rejected")
	}
	if !s.Toggle("overdraw") || s.Toggle("layout") {
		t.Errorf("Toggles = %+v", s.Toggles())
	}
}

func TestSetCurrentDeviceReportsChange(t *testing.T) {
	s := NewState("")
	if !s.SetCurrentDevice("abc") {
		t.Error("First selection should report a change")
	}
	if s.SetCurrentDevice("abc") {
		t.Error("Selecting the same device again should be a no-op")
	}
}

func TestSetCurrentPathClearsFileSelection(t *testing.T) {
	s := NewState("")
	s.SelectFile("a.txt")
	s.SetCurrentPath("/sdcard/Download/")
	if s.SelectedFile() != "" {
		t.Errorf("Selection should clear on navigation, got %q", s.SelectedFile())
	}
}
