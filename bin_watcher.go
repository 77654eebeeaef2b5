package main

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// binDebounce is how long the bin directory must stay quiet before a
// change is reported
const binDebounce = 300 * time.Millisecond

// BinWatcher reports changes to the bundled binaries directory, e.g. when
// adb or scrcpy is replaced while the app runs.
type BinWatcher struct {
	dir      string
	onChange func(names []string)

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
}

// NewBinWatcher creates a watcher for dir. onChange receives the sorted
// base names touched during one quiet period.
func NewBinWatcher(dir string, onChange func(names []string)) *BinWatcher {
	return &BinWatcher{dir: dir, onChange: onChange}
}

// Start begins watching. Calling Start on a running watcher does nothing.
func (w *BinWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}

	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	go w.watch(watcher, w.stopCh, w.done)

	LogInfo("bin_watcher").Str("path", w.dir).Msg("Started watching bin directory")
	return nil
}

// Stop ends the watch loop and waits for it to exit
func (w *BinWatcher) Stop() {
	w.mu.Lock()
	watcher, stopCh, done := w.watcher, w.stopCh, w.done
	w.watcher, w.stopCh, w.done = nil, nil, nil
	w.mu.Unlock()

	if watcher == nil {
		return
	}
	close(stopCh)
	watcher.Close()
	<-done
	LogInfo("bin_watcher").Msg("Stopped watching bin directory")
}

func (w *BinWatcher) watch(watcher *fsnotify.Watcher, stopCh, done chan struct{}) {
	defer close(done)

	var (
		debounce *time.Timer
		fire     <-chan time.Time
		touched  = make(map[string]struct{})
	)

	for {
		select {
		case <-stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			touched[filepath.Base(event.Name)] = struct{}{}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(binDebounce)
			fire = debounce.C

		case <-fire:
			fire = nil
			names := make([]string, 0, len(touched))
			for name := range touched {
				names = append(names, name)
			}
			sort.Strings(names)
			touched = make(map[string]struct{})
			if w.onChange != nil {
				w.onChange(names)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			LogError("bin_watcher").Err(err).Msg("Watcher error")
		}
	}
}

// startBinWatcher drops cached binary paths whenever the bin directory
// changes and tells the window.
func (a *App) startBinWatcher() {
	a.binWatcher = NewBinWatcher(a.cfg.BinDir, a.onBinariesChanged)
	if err := a.binWatcher.Start(); err != nil {
		LogWarn("bin_watcher").Err(err).Str("path", a.cfg.BinDir).Msg("Cannot watch bin directory")
		a.binWatcher = nil
	}
}

func (a *App) stopBinWatcher() {
	if a.binWatcher != nil {
		a.binWatcher.Stop()
	}
}

func (a *App) onBinariesChanged(names []string) {
	if inv, ok := a.executor.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	LogInfo("bin_watcher").Strs("files", names).Msg("Bin directory changed")
	a.emit(eventBinaries, names)
}
