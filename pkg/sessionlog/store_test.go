package sessionlog

import (
	"strings"
	"testing"
	"time"

	"Ascend/pkg/types"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open()
	if err != nil {
		t.Fatalf("Failed to open session log: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndQuery(t *testing.T) {
	store := setupTestStore(t)

	msgs := []struct {
		level Level
		msg   string
	}{
		{Info, "A.S.C.E.N.D. Initialized. Awaiting device connection..."},
		{Error, "No device selected. Command aborted."},
		{Success, "Logcat stream started."},
		{Info, "Folder is empty."},
	}
	for _, m := range msgs {
		entry, err := store.Append(m.level, m.msg)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if entry.ID == "" {
			t.Error("Expected entry ID to be assigned")
		}
	}

	all, err := store.Query("", 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(all))
	}
	if all[0].Message != msgs[0].msg || all[3].Message != msgs[3].msg {
		t.Errorf("Entries not in insertion order: %+v", all)
	}

	infos, err := store.Query(Info, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("Expected 2 INFO entries, got %d", len(infos))
	}

	last, err := store.Query("", 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(last) != 2 || last[0].Message != "Logcat stream started." || last[1].Message != "Folder is empty." {
		t.Errorf("Expected the newest two entries in order, got %+v", last)
	}
}

func TestCountsAndClear(t *testing.T) {
	store := setupTestStore(t)

	store.Append(Error, "one")
	store.Append(Error, "two")
	store.Append(Cmd, "adb devices")

	counts, err := store.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts[Error] != 2 || counts[Cmd] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	all, _ := store.Query("", 0)
	if len(all) != 0 {
		t.Errorf("Expected empty log after Clear, got %d entries", len(all))
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 1, 13, 4, 5, 0, time.Local)
	line := Format(types.LogEntry{Timestamp: ts.UnixMilli(), Level: "ERROR", Message: "boom"})
	if line != "[13:04:05] [ERROR] boom" {
		t.Errorf("Unexpected format: %q", line)
	}

	out := FormatAll([]types.LogEntry{
		{Timestamp: ts.UnixMilli(), Level: "INFO", Message: "a"},
		{Timestamp: ts.UnixMilli(), Level: "SUCCESS", Message: "b"},
	})
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "[SUCCESS] b") {
		t.Errorf("Unexpected FormatAll output: %q", out)
	}
}

func TestAppendUsesClock(t *testing.T) {
	store := setupTestStore(t)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	entry, err := store.Append(Info, "tick")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.Timestamp != fixed.UnixMilli() {
		t.Errorf("Expected timestamp %d, got %d", fixed.UnixMilli(), entry.Timestamp)
	}
}
