package bridge

import "testing"

func TestParseKeyPrecedence(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"", Key{}},
		{"adb-devices", DeviceListKey()},
		{"dashboard-props", DashboardKey("props")},
		{"dashboard-screenDensity", DashboardKey("screenDensity")},
		{"device-ls", FileListKey()},
		{"list-apps", AppListKey()},
		{"toggle-overdraw", ToggleKey("overdraw")},
		{"batch-disable", BatchKey("disable")},
		{"dumpsys", DumpsysKey()},
		{"something-else", Key{Kind: KindDumpsys, Name: "something-else"}},
	}

	for _, tt := range tests {
		got := ParseKey(tt.in)
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestKeyStringMatchesLegacyNames(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{}, ""},
		{DeviceListKey(), "adb-devices"},
		{DashboardKey("battery"), "dashboard-battery"},
		{FileListKey(), "device-ls"},
		{AppListKey(), "list-apps"},
		{ToggleKey("layout"), "toggle-layout"},
		{DumpsysKey(), "dumpsys"},
		{BatchKey("uninstall"), "batch-uninstall"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.key, got, tt.want)
		}
		if back := ParseKey(tt.want); back != tt.key {
			t.Errorf("ParseKey(%q) = %+v, want %+v", tt.want, back, tt.key)
		}
	}
}

func TestKeyIsZero(t *testing.T) {
	if !(Key{}).IsZero() {
		t.Error("Zero key should route to the log")
	}
	if DumpsysKey().IsZero() {
		t.Error("Dumpsys key should not be zero")
	}
}
