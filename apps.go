package main

import (
	"fmt"
	"regexp"
	"strings"

	"Ascend/pkg/bridge"
	"Ascend/pkg/debloat"
	"Ascend/pkg/parse"
	"Ascend/pkg/sessionlog"
	"Ascend/pkg/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// packageNamePattern matches Android application ids
var packageNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z0-9_]+)*$`)

// ValidatePackageName rejects anything that is not a plain application id
func ValidatePackageName(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if len(pkg) > 255 || !packageNamePattern.MatchString(pkg) {
		return fmt.Errorf("invalid package name %q", pkg)
	}
	return nil
}

// AppAction is an operation applied to installed packages
type AppAction string

const (
	AppUninstall AppAction = "uninstall"
	AppDisable   AppAction = "disable"
	AppEnable    AppAction = "enable"
	AppClear     AppAction = "clear"
	AppStop      AppAction = "stop"
)

// shellArgs returns the device shell command for pkg
func (act AppAction) shellArgs(pkg string) ([]string, error) {
	switch act {
	case AppUninstall:
		return []string{"pm", "uninstall", "-k", "--user", "0", pkg}, nil
	case AppDisable:
		return []string{"pm", "disable-user", "--user", "0", pkg}, nil
	case AppEnable:
		return []string{"pm", "enable", pkg}, nil
	case AppClear:
		return []string{"pm", "clear", pkg}, nil
	case AppStop:
		return []string{"am", "force-stop", pkg}, nil
	}
	return nil, fmt.Errorf("unknown app action %q", act)
}

// destructive actions need an explicit confirm from the caller
func (act AppAction) destructive() bool {
	return act == AppUninstall || act == AppClear
}

func (act AppAction) userAction() UserAction {
	switch act {
	case AppUninstall:
		return ActionAppUninstall
	case AppClear:
		return ActionAppClear
	case AppStop:
		return ActionAppStop
	default:
		return ActionAppDisable
	}
}

// AppListView is what the apps tab renders
type AppListView struct {
	Apps     []types.AppRecord     `json:"apps"`
	Total    int                   `json:"total"`
	Options  debloat.FilterOptions `json:"options"`
	Selected []string              `json:"selected"`
}

func (a *App) appListView() AppListView {
	all := a.state.Apps()
	return AppListView{
		Apps:     debloat.Filter(all, a.state.AppFilter()),
		Total:    len(all),
		Options:  debloat.Options(all),
		Selected: a.state.Selection(),
	}
}

func (a *App) emitApps() {
	a.emit(eventApps, a.appListView())
}

// listApps queries enabled packages for the current scope in the
// foreground and drops the selection.
func (a *App) listApps() (*bridge.Pending, error) {
	if a.state.CurrentDevice() == "" {
		return nil, ErrNoDevice
	}
	a.state.ClearSelection()

	args := []string{"pm", "list", "packages", "-e"}
	switch a.state.AppFilter().Scope {
	case "system":
		args = append(args, "-s")
	case "user":
		args = append(args, "-3")
	}
	return a.shell(false, bridge.AppListKey(), args...)
}

// ListApps reloads the package list
func (a *App) ListApps() error {
	_, err := a.listApps()
	return err
}

// handleAppList joins the package list against the debloat database
func (a *App) handleAppList(out bridge.Output) error {
	if out.Failed() {
		a.logSession(sessionlog.Error, out.Message)
		a.state.SetApps(nil)
		a.emitApps()
		return nil
	}

	records := a.debloatDB().Join(parse.Packages(out.Message))
	a.state.SetApps(records)
	LogDebug("apps").Int("count", len(records)).Msg("App list updated")
	a.emitApps()
	return nil
}

// SetAppScope switches between all, system and user packages and reloads
func (a *App) SetAppScope(scope string) error {
	switch scope {
	case "all", "system", "user":
	default:
		return fmt.Errorf("unknown app scope %q", scope)
	}
	f := a.state.AppFilter()
	f.Scope = scope
	a.state.SetAppFilter(f)
	return a.ListApps()
}

// SetAppFilter narrows the loaded list by removal safety, OEM list and a
// search over id and name. Empty values mean "all".
func (a *App) SetAppFilter(safety, oem, search string) AppListView {
	f := a.state.AppFilter()
	f.Safety = orAll(safety)
	f.OEM = orAll(oem)
	f.Search = search
	a.state.SetAppFilter(f)

	view := a.appListView()
	a.emit(eventApps, view)
	return view
}

func orAll(v string) string {
	if strings.TrimSpace(v) == "" {
		return debloat.FilterAll
	}
	return v
}

// GetApps returns the filtered app list
func (a *App) GetApps() AppListView {
	return a.appListView()
}

// GetAppDetails returns the database record of one loaded package
func (a *App) GetAppDetails(pkg string) (types.AppRecord, error) {
	for _, app := range a.state.Apps() {
		if app.ID == pkg {
			return app, nil
		}
	}
	return types.AppRecord{}, fmt.Errorf("package %s is not in the current list", pkg)
}

// SelectApp adds or removes pkg from the batch selection
func (a *App) SelectApp(pkg string, selected bool) []string {
	a.state.SetSelected(pkg, selected)
	return a.state.Selection()
}

// GetSelectedApps returns the batch selection, sorted
func (a *App) GetSelectedApps() []string {
	return a.state.Selection()
}

// ClearAppSelection empties the batch selection
func (a *App) ClearAppSelection() {
	a.state.ClearSelection()
}

// BatchAction applies action to every selected package. Uninstall needs
// confirm. It returns how many packages were dispatched.
func (a *App) BatchAction(action string, confirm bool) (int, error) {
	pkgs := a.state.Selection()
	if len(pkgs) == 0 {
		return 0, nil
	}
	act := AppAction(action)
	if act.destructive() && !confirm {
		return 0, ErrCancelled
	}
	if _, err := a.batchAction(act, pkgs); err != nil {
		return 0, err
	}
	return len(pkgs), nil
}

// batchAction issues one background command per package. Once every
// command has completed, failures are reported per package and the list
// is refreshed once. The returned channel closes after that refresh.
func (a *App) batchAction(act AppAction, pkgs []string) (<-chan struct{}, error) {
	for _, pkg := range pkgs {
		if err := ValidatePackageName(pkg); err != nil {
			return nil, err
		}
	}
	if _, err := act.shellArgs(""); err != nil {
		return nil, err
	}

	LogUserAction(ActionAppBatch, a.state.CurrentDevice(), map[string]interface{}{
		"action":   string(act),
		"packages": pkgs,
	})
	timer := StartOperation("apps", "batch_"+string(act)).AddDetail("count", len(pkgs))

	pending := make([]*bridge.Pending, 0, len(pkgs))
	for _, pkg := range pkgs {
		args, _ := act.shellArgs(pkg)
		p, err := a.shell(true, bridge.BatchKey(string(act)), args...)
		if err != nil {
			timer.EndWithError(err)
			return nil, err
		}
		pending = append(pending, p)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		outs, err := bridge.WaitAll(a.runCtx, pending...)
		if err != nil {
			timer.EndWithError(err)
			return
		}

		failed := 0
		for i, out := range outs {
			if out.Failed() || strings.Contains(out.Message, "Failure") {
				failed++
				a.logSession(sessionlog.Error, fmt.Sprintf("Failed to %s %s: %s", act, pkgs[i], out.Message))
			}
		}
		if ok := len(outs) - failed; ok > 0 {
			a.logSession(sessionlog.Success, fmt.Sprintf("%s: %d of %d app(s) done.", cases.Title(language.English).String(string(act)), ok, len(outs)))
		}
		timer.AddDetail("failed", failed).End()

		if p, err := a.listApps(); err == nil {
			p.Wait(a.runCtx)
		}
	}()
	return done, nil
}

// RunAppAction applies a single action to pkg, then reloads the list.
// Uninstall and clear need confirm.
func (a *App) RunAppAction(pkg, action string, confirm bool) error {
	_, _, err := a.appAction(pkg, AppAction(action), confirm)
	return err
}

// appAction returns the action's own command and a channel closed after
// the follow-up refresh.
func (a *App) appAction(pkg string, act AppAction, confirm bool) (*bridge.Pending, <-chan struct{}, error) {
	if err := ValidatePackageName(pkg); err != nil {
		return nil, nil, err
	}
	args, err := act.shellArgs(pkg)
	if err != nil {
		return nil, nil, err
	}
	if act.destructive() && !confirm {
		return nil, nil, ErrCancelled
	}

	p, err := a.shell(false, bridge.Key{}, args...)
	if err != nil {
		return nil, nil, err
	}
	LogUserAction(act.userAction(), a.state.CurrentDevice(), map[string]interface{}{
		"package": pkg,
		"action":  string(act),
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := p.Wait(a.runCtx); err != nil {
			return
		}
		if next, err := a.listApps(); err == nil {
			next.Wait(a.runCtx)
		}
	}()
	return p, done, nil
}
