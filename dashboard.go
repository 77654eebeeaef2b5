package main

import (
	"fmt"
	"runtime/debug"

	"Ascend/pkg/bridge"
	"Ascend/pkg/parse"
	"Ascend/pkg/session"
	"Ascend/pkg/types"
)

// dashboardQueries are the seven background reads behind the dashboard,
// in display order.
var dashboardQueries = []struct {
	field string
	args  []string
}{
	{"props", []string{"getprop"}},
	{"battery", []string{"dumpsys", "battery"}},
	{"network", []string{"ip", "addr", "show", "wlan0"}},
	{"cpu", []string{"dumpsys", "cpuinfo"}},
	{"ram", []string{"cat", "/proc/meminfo"}},
	{"screenSize", []string{"wm", "size"}},
	{"screenDensity", []string{"wm", "density"}},
}

// getDashboardData clears the dashboard and issues every dashboard query
// in the background.
func (a *App) getDashboardData() []*bridge.Pending {
	if a.state.CurrentDevice() == "" {
		return nil
	}
	a.clearDashboard()

	timer := StartOperation("dashboard", "refresh").AddDetail("device_id", a.state.CurrentDevice())
	pending := make([]*bridge.Pending, 0, len(dashboardQueries))
	for _, q := range dashboardQueries {
		p, err := a.shell(true, bridge.DashboardKey(q.field), q.args...)
		if err != nil {
			timer.EndWithError(err)
			return pending
		}
		pending = append(pending, p)
	}

	go func() {
		if _, err := bridge.WaitAll(a.runCtx, pending...); err != nil {
			timer.EndWithError(err)
			return
		}
		timer.End()
	}()
	return pending
}

// RefreshDashboard reloads every dashboard field
func (a *App) RefreshDashboard() {
	a.getDashboardData()
}

// GetDashboard returns the current dashboard fields
func (a *App) GetDashboard() types.Dashboard {
	return a.state.Dashboard()
}

// clearDashboard resets every field to the loading placeholder
func (a *App) clearDashboard() {
	d := a.state.UpdateDashboard(func(d *types.Dashboard) {
		*d = session.ClearedDashboard(session.Placeholder)
	})
	a.emit(eventDashboard, d)
}

// handleDashboard parses one dashboard query into its fields
func (a *App) handleDashboard(out bridge.Output) (err error) {
	defer func() {
		if r := recover(); r != nil {
			LogPanic("dashboard", r, string(debug.Stack()))
			err = fmt.Errorf("%v", r)
		}
	}()

	text := out.Message
	var apply func(d *types.Dashboard)

	switch out.Key.Name {
	case "props":
		id := parse.IdentityFromProps(text)
		apply = func(d *types.Dashboard) {
			d.Model, d.Brand, d.Version, d.Build = id.Model, id.Brand, id.Version, id.Build
		}
	case "battery":
		battery := parse.Battery(text)
		apply = func(d *types.Dashboard) { d.Battery = battery }
	case "network":
		ip, mac := parse.Network(text)
		apply = func(d *types.Dashboard) { d.IP, d.MAC = ip, mac }
	case "cpu":
		load := parse.CPULoad(text)
		apply = func(d *types.Dashboard) { d.CPU = load }
	case "ram":
		mem, ok := parse.MemoryUsage(text)
		if !ok {
			return nil
		}
		apply = func(d *types.Dashboard) { d.RAM, d.RAMPercent = mem.Text, mem.Percent }
	case "screenSize":
		size := parse.ScreenSize(text)
		apply = func(d *types.Dashboard) { d.Resolution = size }
	case "screenDensity":
		density := parse.ScreenDensity(text)
		apply = func(d *types.Dashboard) { d.Density = density }
	default:
		return fmt.Errorf("unknown dashboard field %q", out.Key.Name)
	}

	a.emit(eventDashboard, a.state.UpdateDashboard(apply))
	return nil
}
