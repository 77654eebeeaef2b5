package main

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"Ascend/pkg/types"

	"golang.org/x/time/rate"
)

func TestSendKey(t *testing.T) {
	app, fake, rec := newTestApp(t)
	withDevice(app)

	p, err := app.sendKey("home")
	if err != nil {
		t.Fatalf("sendKey: %v", err)
	}
	waitPending(t, app, p)

	if lines := fake.Lines(); len(lines) != 1 || lines[0] != "-s emulator-5554 shell input keyevent 3" {
		t.Errorf("lines = %v", lines)
	}
	if msgs := rec.logMessages("CMD"); len(msgs) != 0 {
		t.Errorf("key events run in the background, got %v", msgs)
	}
	if _, err := app.sendKey("power"); err == nil {
		t.Error("expected error for an unknown key")
	}
}

func TestRemoteKeysAreSorted(t *testing.T) {
	app, _, _ := newTestApp(t)
	keys := app.GetRemoteKeys()
	if len(keys) != len(remoteKeycodes) {
		t.Fatalf("keys = %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Errorf("keys not sorted: %v", keys)
		}
	}
}

func TestSendTextEncodesSpaces(t *testing.T) {
	app, fake, _ := newTestApp(t)
	withDevice(app)

	p, err := app.sendText("hello big world")
	if err != nil {
		t.Fatalf("sendText: %v", err)
	}
	waitPending(t, app, p)

	if lines := fake.Lines(); len(lines) != 1 || lines[0] != "-s emulator-5554 shell input text hello%sbig%sworld" {
		t.Errorf("lines = %v", lines)
	}

	if p, err := app.sendText(""); p != nil || err != nil {
		t.Errorf("empty text should be a no-op, got %v, %v", p, err)
	}
}

func TestRemoteInputIsRateLimited(t *testing.T) {
	app, fake, _ := newTestApp(t)
	withDevice(app)
	app.keyLimiter = rate.NewLimiter(rate.Every(time.Hour), 2)

	for i := 0; i < 2; i++ {
		if _, err := app.sendKey("up"); err != nil {
			t.Fatalf("key %d: %v", i, err)
		}
	}
	if _, err := app.sendKey("up"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
	if _, err := app.sendText("abc"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("text err = %v, want ErrRateLimited", err)
	}
	if !fake.WaitForCount("input keyevent 19", 2, testTimeout) {
		t.Fatalf("lines = %v", fake.Lines())
	}
	if n := fake.Count("input"); n != 2 {
		t.Errorf("dropped events should not spawn, got %v", fake.Lines())
	}
}

func TestScrcpyArgs(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	got := strings.Join(scrcpyArgs("abc", types.ScrcpyConfig{}, now), " ")
	if got != "-s abc --window-title A.S.C.E.N.D - abc" {
		t.Errorf("defaults = %q", got)
	}

	cfg := types.ScrcpyConfig{
		BitRate:         8,
		Record:          true,
		Fullscreen:      true,
		TurnScreenOff:   true,
		ShowTouches:     true,
		StayAwake:       true,
		PowerOffOnClose: true,
	}
	got = strings.Join(scrcpyArgs("abc", cfg, now), " ")
	want := "-s abc --video-bit-rate 8M --record scrcpy-record-1700000000000.mp4 --fullscreen " +
		"--turn-screen-off --show-touches --stay-awake --power-off-on-close --window-title A.S.C.E.N.D - abc"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestStartScrcpyNeedsDeviceAndProcessSupport(t *testing.T) {
	app, _, rec := newTestApp(t)

	if err := app.StartScrcpy(types.ScrcpyConfig{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
	if !rec.hasLog("ERROR", "No device selected. Command aborted.") {
		t.Errorf("missing abort message, got %v", rec.logMessages(""))
	}

	withDevice(app)
	if err := app.StartScrcpy(types.ScrcpyConfig{}); !errors.Is(err, errNoProcessSupport) {
		t.Errorf("err = %v, want errNoProcessSupport", err)
	}
	if app.IsScrcpyRunning() {
		t.Error("nothing should be running")
	}
	if err := app.StopScrcpy(); err != nil {
		t.Errorf("StopScrcpy with nothing running: %v", err)
	}
}

func TestParseLogcatLine(t *testing.T) {
	line := "01-04 12:34:56.789 W/ActivityManager(  512): Slow operation: 120ms"
	got := parseLogcatLine(line)
	if got.Raw != line || got.Level != "W" || got.Tag != "ActivityManager" || got.Message != "Slow operation: 120ms" {
		t.Errorf("parsed = %+v", got)
	}

	other := "--------- beginning of main"
	if got := parseLogcatLine(other); got.Raw != other || got.Level != "" || got.Tag != "" {
		t.Errorf("unparsed line = %+v", got)
	}
}

func TestPumpLogcatEmitsLines(t *testing.T) {
	app, _, rec := newTestApp(t)

	var wg sync.WaitGroup
	wg.Add(2)
	app.pumpLogcat(&wg, strings.NewReader("01-04 12:34:56.789 I/Tag( 1): hi\nplain\n"), "")
	app.pumpLogcat(&wg, strings.NewReader("device offline\n"), "ERROR: ")
	wg.Wait()

	if n := rec.count(eventLogcat); n != 3 {
		t.Fatalf("expected 3 lines, got %d", n)
	}
	last, _ := rec.last(eventLogcat)
	if l := last.(LogcatLine); l.Raw != "ERROR: device offline" || l.Level != "E" {
		t.Errorf("stderr line = %+v", l)
	}
}

func TestStartLogcatWithoutProcessSupport(t *testing.T) {
	app, _, _ := newTestApp(t)
	withDevice(app)

	if err := app.StartLogcat(); !errors.Is(err, errNoProcessSupport) {
		t.Errorf("err = %v, want errNoProcessSupport", err)
	}
	if app.IsLogcatRunning() {
		t.Error("nothing should be running")
	}
	app.StopLogcat()
}
