package main

import (
	"fmt"
	"path"
	"strings"

	"Ascend/pkg/bridge"
	"Ascend/pkg/parse"
	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"
)

// Breadcrumb is one clickable segment of the current device path
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// FileListView is what the files tab renders
type FileListView struct {
	Path        string            `json:"path"`
	Entries     []types.FileEntry `json:"entries"`
	Breadcrumbs []Breadcrumb      `json:"breadcrumbs"`
	Selected    string            `json:"selected"`
}

// cleanDevicePath makes p absolute and drops redundant separators
func cleanDevicePath(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

// shellQuote wraps p in double quotes for the device shell
func shellQuote(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(p) + `"`
}

// breadcrumbs splits p into "/" followed by one crumb per segment
func breadcrumbs(p string) []Breadcrumb {
	crumbs := []Breadcrumb{{Name: "/", Path: "/"}}
	current := "/"
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		current = path.Join(current, part)
		crumbs = append(crumbs, Breadcrumb{Name: part, Path: current})
	}
	return crumbs
}

func (a *App) fileListView() FileListView {
	entries := a.state.Files()
	if entries == nil {
		entries = []types.FileEntry{}
	}
	return FileListView{
		Path:        a.state.CurrentPath(),
		Entries:     entries,
		Breadcrumbs: breadcrumbs(a.state.CurrentPath()),
		Selected:    a.state.SelectedFile(),
	}
}

// listDeviceFiles lists dir in the foreground and makes it the current path
func (a *App) listDeviceFiles(dir string) (*bridge.Pending, error) {
	if a.state.CurrentDevice() == "" {
		return nil, ErrNoDevice
	}
	dir = cleanDevicePath(dir)
	a.state.SetCurrentPath(dir)
	return a.shell(false, bridge.FileListKey(), "ls -F "+shellQuote(dir))
}

// ListDeviceFiles browses to dir
func (a *App) ListDeviceFiles(dir string) error {
	_, err := a.listDeviceFiles(dir)
	return err
}

// handleFileList renders an `ls -F` listing
func (a *App) handleFileList(out bridge.Output) error {
	if out.Failed() {
		a.logSession(sessionlog.Error, out.Message)
		a.state.SetFiles(nil)
		a.emit(eventFiles, a.fileListView())
		return nil
	}

	entries := parse.Listing(out.Message)
	a.state.SetFiles(entries)
	if len(entries) == 0 {
		a.logSession(sessionlog.Info, "Folder is empty.")
	}
	a.emit(eventFiles, a.fileListView())
	return nil
}

// GetFiles returns the current listing
func (a *App) GetFiles() FileListView {
	return a.fileListView()
}

// SelectFile marks name as the target of file actions
func (a *App) SelectFile(name string) {
	a.state.SelectFile(name)
}

// OpenDirectory descends into a directory of the current listing
func (a *App) OpenDirectory(name string) error {
	if name == "" {
		return fmt.Errorf("directory name cannot be empty")
	}
	return a.ListDeviceFiles(path.Join(a.state.CurrentPath(), name))
}

// GoUp lists the parent of the current path
func (a *App) GoUp() error {
	return a.ListDeviceFiles(path.Dir(cleanDevicePath(a.state.CurrentPath())))
}

// GetBreadcrumbs returns the segments of the current path
func (a *App) GetBreadcrumbs() []Breadcrumb {
	return breadcrumbs(a.state.CurrentPath())
}

// DownloadFile pulls name from the current directory to a path picked in
// the save dialog.
func (a *App) DownloadFile(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name cannot be empty")
	}
	if a.state.CurrentDevice() == "" {
		return "", ErrNoDevice
	}
	dest, err := a.chooseSavePath("Save File", name)
	if err != nil {
		return "", err
	}

	target := path.Join(a.state.CurrentPath(), name)
	if _, err := a.runCommand([]string{"pull", target, dest}, false, bridge.Key{}); err != nil {
		return "", err
	}
	LogUserAction(ActionFilePull, a.state.CurrentDevice(), map[string]interface{}{
		"remote": target,
		"local":  dest,
	})
	return dest, nil
}

// RenameFile renames name to newName inside the current directory
func (a *App) RenameFile(name, newName string) error {
	_, err := a.renameFile(name, newName)
	return err
}

func (a *App) renameFile(name, newName string) (<-chan struct{}, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == name {
		return closedChan(), nil
	}
	if err := validateEntryName(newName); err != nil {
		return nil, err
	}
	dir := a.state.CurrentPath()
	from, to := path.Join(dir, name), path.Join(dir, newName)

	LogUserAction(ActionFileRename, a.state.CurrentDevice(), map[string]interface{}{"from": from, "to": to})
	return a.fileAction("mv " + shellQuote(from) + " " + shellQuote(to))
}

// DeleteFile removes name from the current directory, recursively. It
// needs confirm.
func (a *App) DeleteFile(name string, confirm bool) error {
	_, err := a.deleteFile(name, confirm)
	return err
}

func (a *App) deleteFile(name string, confirm bool) (<-chan struct{}, error) {
	if err := validateEntryName(name); err != nil {
		return nil, err
	}
	if !confirm {
		return nil, ErrCancelled
	}
	target := path.Join(a.state.CurrentPath(), name)

	LogUserAction(ActionFileDelete, a.state.CurrentDevice(), map[string]interface{}{"path": target})
	return a.fileAction("rm -rf " + shellQuote(target))
}

// DeleteConfirmation is the prompt shown before DeleteFile
func (a *App) DeleteConfirmation(name string) string {
	return fmt.Sprintf("Are you sure you want to permanently delete %q?", name)
}

// CreateFolder makes a new directory in the current directory
func (a *App) CreateFolder(name string) error {
	_, err := a.createFolder(name)
	return err
}

func (a *App) createFolder(name string) (<-chan struct{}, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return closedChan(), nil
	}
	if err := validateEntryName(name); err != nil {
		return nil, err
	}
	target := path.Join(a.state.CurrentPath(), name)

	LogUserAction(ActionFileMkdir, a.state.CurrentDevice(), map[string]interface{}{"path": target})
	return a.fileAction("mkdir " + shellQuote(target))
}

// fileAction runs a shell command in the foreground, then lists the
// current directory again once it has completed. The returned channel
// closes after that listing.
func (a *App) fileAction(command string) (<-chan struct{}, error) {
	p, err := a.shell(false, bridge.Key{}, command)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Wait(a.runCtx); err != nil {
			return
		}
		if next, err := a.listDeviceFiles(a.state.CurrentPath()); err == nil {
			next.Wait(a.runCtx)
		}
	}()
	return done, nil
}

// validateEntryName accepts a single path segment
func validateEntryName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid name %q", name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("name %q must not contain '/'", name)
	}
	return nil
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
