package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Ascend/pkg/bridge"
	"Ascend/pkg/debloat"
	"Ascend/pkg/types"
)

const testDebloatJSON = `[
  {"id": "com.facebook.katana", "name": "Facebook", "list": "Misc", "description": "Facebook app", "removal": "Recommended"},
  {"id": "com.google.android.gms", "list": "Google", "description": "Play services", "removal": "Unsafe"},
  {"list": "Oem"}
]`

func useTestDB(t *testing.T, app *App) {
	t.Helper()
	db, err := debloat.Parse([]byte(testDebloatJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	app.dbMu.Lock()
	app.db = db
	app.dbMu.Unlock()
}

func TestLoadDebloatDBFromConfig(t *testing.T) {
	app, _, rec := newTestApp(t)
	if err := os.MkdirAll(filepath.Dir(app.cfg.DebloatDB), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(app.cfg.DebloatDB, []byte(testDebloatJSON), 0644); err != nil {
		t.Fatal(err)
	}

	app.loadDebloatDB()

	if n := app.debloatDB().Len(); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	if msgs := rec.logMessages("ERROR"); len(msgs) != 0 {
		t.Errorf("unexpected errors %v", msgs)
	}
}

func TestHandleAppListJoinsDatabase(t *testing.T) {
	app, fake, rec := newTestApp(t)
	withDevice(app)
	useTestDB(t, app)
	fake.Respond("pm list packages", bridge.Success("package:com.facebook.katana\npackage:com.example.notes\n"))

	p, err := app.listApps()
	if err != nil {
		t.Fatalf("listApps: %v", err)
	}
	waitPending(t, app, p)

	if lines := fake.Lines(); len(lines) != 1 || lines[0] != "-s emulator-5554 shell pm list packages -e" {
		t.Errorf("lines = %v", lines)
	}

	apps := app.state.Apps()
	if len(apps) != 2 {
		t.Fatalf("apps = %+v", apps)
	}
	notes, fb := apps[0], apps[1]
	if notes.ID != "com.example.notes" || notes.List != "Unknown" || notes.Removal != "unknown" ||
		notes.Description != "No description available." {
		t.Errorf("unknown package not defaulted: %+v", notes)
	}
	if fb.Name != "Facebook" || fb.List != "Misc" || fb.Removal != "recommended" {
		t.Errorf("known package not joined: %+v", fb)
	}
	if rec.count(eventApps) == 0 {
		t.Error("expected an apps event")
	}
}

func TestAppScopeSelectsListFlags(t *testing.T) {
	tests := []struct {
		scope string
		want  string
	}{
		{"all", "-s emulator-5554 shell pm list packages -e"},
		{"system", "-s emulator-5554 shell pm list packages -e -s"},
		{"user", "-s emulator-5554 shell pm list packages -e -3"},
	}
	for _, tt := range tests {
		app, fake, _ := newTestApp(t)
		withDevice(app)

		if err := app.SetAppScope(tt.scope); err != nil {
			t.Fatalf("SetAppScope(%s): %v", tt.scope, err)
		}
		if !fake.WaitForCount("pm list packages", 1, testTimeout) {
			t.Fatalf("%s: list not issued", tt.scope)
		}
		if lines := fake.Lines(); lines[0] != tt.want {
			t.Errorf("%s: got %q, want %q", tt.scope, lines[0], tt.want)
		}
	}

	app, _, _ := newTestApp(t)
	if err := app.SetAppScope("vendor"); err == nil {
		t.Error("expected error for unknown scope")
	}
}

func TestSetAppFilterNarrowsView(t *testing.T) {
	app, _, _ := newTestApp(t)
	useTestDB(t, app)
	app.state.SetApps(app.debloatDB().Join([]string{
		"com.facebook.katana", "com.google.android.gms", "com.example.notes",
	}))

	view := app.SetAppFilter("recommended", "", "")
	if view.Total != 3 || len(view.Apps) != 1 || view.Apps[0].ID != "com.facebook.katana" {
		t.Errorf("safety filter: %+v", view)
	}

	view = app.SetAppFilter("", "Google", "")
	if len(view.Apps) != 1 || view.Apps[0].ID != "com.google.android.gms" {
		t.Errorf("oem filter: %+v", view.Apps)
	}

	view = app.SetAppFilter("", "", "NOTES")
	if len(view.Apps) != 1 || view.Apps[0].ID != "com.example.notes" {
		t.Errorf("search filter: %+v", view.Apps)
	}

	if f := app.state.AppFilter(); f.Safety != debloat.FilterAll || f.OEM != debloat.FilterAll {
		t.Errorf("empty values should mean all, got %+v", f)
	}
	if len(view.Options.Lists) != 3 {
		t.Errorf("options = %+v", view.Options)
	}
}

func TestBatchDisableRefreshesOnce(t *testing.T) {
	app, fake, rec := newTestApp(t)
	withDevice(app)
	pkgs := []string{"com.a", "com.b", "com.c"}
	fake.Respond("com.b", bridge.Failure(1, "Permission denied"))

	done, err := app.batchAction(AppDisable, pkgs)
	if err != nil {
		t.Fatalf("batchAction: %v", err)
	}
	waitClosed(t, done)

	if n := fake.Count("pm disable-user --user 0"); n != 3 {
		t.Errorf("disable commands = %d, want 3", n)
	}
	if n := fake.Count("pm list packages"); n != 1 {
		t.Errorf("list refreshes = %d, want 1", n)
	}
	if !rec.hasLog("ERROR", "Failed to disable com.b: Permission denied") {
		t.Errorf("missing failure entry, got %v", rec.logMessages("ERROR"))
	}
	if !rec.hasLog("SUCCESS", "Disable: 2 of 3 app(s) done.") {
		t.Errorf("missing summary, got %v", rec.logMessages("SUCCESS"))
	}
	if msgs := rec.logMessages("CMD"); len(msgs) != 1 {
		t.Errorf("only the refresh should be logged, got %v", msgs)
	}
}

func TestBatchActionRejectsBadInput(t *testing.T) {
	app, fake, _ := newTestApp(t)
	withDevice(app)

	if _, err := app.batchAction(AppDisable, []string{"com.ok", "bad;pkg"}); err == nil {
		t.Error("expected validation error")
	}
	if _, err := app.batchAction(AppAction("freeze"), []string{"com.ok"}); err == nil {
		t.Error("expected unknown action error")
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("nothing should be spawned, got %v", fake.Lines())
	}
}

func TestBatchActionUsesSelection(t *testing.T) {
	app, fake, _ := newTestApp(t)
	withDevice(app)

	if n, err := app.BatchAction("disable", false); err != nil || n != 0 {
		t.Errorf("empty selection: n=%d err=%v", n, err)
	}

	app.SelectApp("com.a", true)
	app.SelectApp("com.b", true)
	if _, err := app.BatchAction("uninstall", false); !errors.Is(err, ErrCancelled) {
		t.Errorf("uninstall without confirm: err = %v, want ErrCancelled", err)
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("nothing should be spawned, got %v", fake.Lines())
	}

	n, err := app.BatchAction("uninstall", true)
	if err != nil || n != 2 {
		t.Fatalf("BatchAction: n=%d err=%v", n, err)
	}
	if !fake.WaitForCount("pm uninstall -k --user 0", 2, testTimeout) {
		t.Errorf("expected two uninstalls, got %v", fake.Lines())
	}
}

func TestAppActionRelists(t *testing.T) {
	app, fake, rec := newTestApp(t)
	withDevice(app)

	p, done, err := app.appAction("com.example.notes", AppStop, false)
	if err != nil {
		t.Fatalf("appAction: %v", err)
	}
	waitPending(t, app, p)
	waitClosed(t, done)

	lines := fake.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "-s emulator-5554 shell am force-stop com.example.notes" {
		t.Errorf("action = %q", lines[0])
	}
	if lines[1] != "-s emulator-5554 shell pm list packages -e" {
		t.Errorf("refresh = %q", lines[1])
	}
	if !rec.hasLog("CMD", "adb -s emulator-5554 shell am force-stop com.example.notes") {
		t.Errorf("single actions are foreground, got %v", rec.logMessages("CMD"))
	}
}

func TestAppActionDestructiveNeedsConfirm(t *testing.T) {
	app, fake, _ := newTestApp(t)
	withDevice(app)

	for _, act := range []AppAction{AppUninstall, AppClear} {
		if _, _, err := app.appAction("com.example.notes", act, false); !errors.Is(err, ErrCancelled) {
			t.Errorf("%s: err = %v, want ErrCancelled", act, err)
		}
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("nothing should be spawned, got %v", fake.Lines())
	}
}

func TestShellArgs(t *testing.T) {
	tests := []struct {
		act  AppAction
		want string
	}{
		{AppUninstall, "pm uninstall -k --user 0 com.x"},
		{AppDisable, "pm disable-user --user 0 com.x"},
		{AppEnable, "pm enable com.x"},
		{AppClear, "pm clear com.x"},
		{AppStop, "am force-stop com.x"},
	}
	for _, tt := range tests {
		args, err := tt.act.shellArgs("com.x")
		if err != nil {
			t.Fatalf("%s: %v", tt.act, err)
		}
		if got := strings.Join(args, " "); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.act, got, tt.want)
		}
	}
}

func TestValidatePackageName(t *testing.T) {
	valid := []string{"com.example.app", "android", "com.android.chrome_beta"}
	invalid := []string{"", "1com.x", "com.x;reboot", "com x", "com/x"}
	for _, pkg := range valid {
		if err := ValidatePackageName(pkg); err != nil {
			t.Errorf("ValidatePackageName(%q) = %v", pkg, err)
		}
	}
	for _, pkg := range invalid {
		if err := ValidatePackageName(pkg); err == nil {
			t.Errorf("ValidatePackageName(%q) should fail", pkg)
		}
	}
}

func TestGetAppDetails(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.state.SetApps([]types.AppRecord{{ID: "com.a", Name: "A"}})

	if rec, err := app.GetAppDetails("com.a"); err != nil || rec.Name != "A" {
		t.Errorf("GetAppDetails = %+v, %v", rec, err)
	}
	if _, err := app.GetAppDetails("com.b"); err == nil {
		t.Error("expected error for a package not in the list")
	}
}
