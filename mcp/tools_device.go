package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerDeviceTools registers device management tools
func (s *MCPServer) registerDeviceTools() {
	// device_list - List connected devices
	s.server.AddTool(
		mcp.NewTool("device_list",
			mcp.WithDescription("List attached Android devices and show which one is selected"),
		),
		s.handleDeviceList,
	)

	// device_select - Choose the target device
	s.server.AddTool(
		mcp.NewTool("device_select",
			mcp.WithDescription("Select the device that later commands go to"),
			mcp.WithString("device_id",
				mcp.Required(),
				mcp.Description("Device ID as shown by device_list"),
			),
		),
		s.handleDeviceSelect,
	)

	// device_dashboard - Read the dashboard
	s.server.AddTool(
		mcp.NewTool("device_dashboard",
			mcp.WithDescription("Refresh and return model, Android version, battery, network, CPU, RAM and screen of the selected device"),
		),
		s.handleDeviceDashboard,
	)

	// device_reboot - Reboot the device
	s.server.AddTool(
		mcp.NewTool("device_reboot",
			mcp.WithDescription("Reboot the selected device into system, recovery or bootloader"),
			mcp.WithString("mode",
				mcp.Description("Reboot target"),
				mcp.Enum("system", "recovery", "bootloader"),
			),
		),
		s.handleDeviceReboot,
	)

	// remote_key - Press a remote button
	s.server.AddTool(
		mcp.NewTool("remote_key",
			mcp.WithDescription("Press a remote control button on the selected device"),
			mcp.WithString("key",
				mcp.Required(),
				mcp.Description("Button name: up, down, left, right, center, home, back, recents, volume_up, volume_down, previous, next, play_pause"),
			),
		),
		s.handleRemoteKey,
	)

	// remote_text - Type text
	s.server.AddTool(
		mcp.NewTool("remote_text",
			mcp.WithDescription("Type text into the focused field on the selected device"),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text to type"),
			),
		),
		s.handleRemoteText,
	)

	// quick_command - Run a canned diagnostic
	s.server.AddTool(
		mcp.NewTool("quick_command",
			mcp.WithDescription("Run a canned diagnostic command and return its output"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Command name: Battery Stats, Display Info, Memory Info, Active Services, Get All Props"),
			),
		),
		s.handleQuickCommand,
	)

	// toggle_get - Read developer toggles
	s.server.AddTool(
		mcp.NewTool("toggle_get",
			mcp.WithDescription("Read the layout bounds, GPU overdraw and pointer location developer toggles"),
		),
		s.handleToggleGet,
	)

	// toggle_set - Change a developer toggle
	s.server.AddTool(
		mcp.NewTool("toggle_set",
			mcp.WithDescription("Turn a developer toggle on or off"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Toggle name"),
				mcp.Enum("layout", "overdraw", "pointer"),
			),
			mcp.WithBoolean("on",
				mcp.Required(),
				mcp.Description("New state"),
			),
		),
		s.handleToggleSet,
	)
}

// Tool handlers

func (s *MCPServer) handleDeviceList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.app.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(list.Devices) == 0 {
		return textResult("No devices connected"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d device(s):\n\n", len(list.Devices))
	for i, id := range list.Devices {
		marker := ""
		if id == list.Current {
			marker = " [selected]"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, id, marker)
	}

	jsonData, _ := json.MarshalIndent(list, "", "  ")
	return textResult(b.String(), fmt.Sprintf("\nJSON data:\n```json\n%s\n```", string(jsonData))), nil
}

func (s *MCPServer) handleDeviceSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deviceID, err := stringArg(request.GetArguments(), "device_id")
	if err != nil {
		return nil, err
	}

	if err := s.app.SelectDevice(deviceID); err != nil {
		return nil, fmt.Errorf("failed to select device: %w", err)
	}
	return textResult(fmt.Sprintf("Selected device %s", deviceID)), nil
}

func (s *MCPServer) handleDeviceDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := s.app.GetDashboard()
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard: %w", err)
	}

	result := fmt.Sprintf("Model: %s\n", d.Model)
	result += fmt.Sprintf("Brand: %s\n", d.Brand)
	result += fmt.Sprintf("Android Version: %s\n", d.Version)
	result += fmt.Sprintf("Build: %s\n", d.Build)
	result += fmt.Sprintf("Battery: %s\n", d.Battery)
	result += fmt.Sprintf("IP: %s\n", d.IP)
	result += fmt.Sprintf("MAC: %s\n", d.MAC)
	result += fmt.Sprintf("CPU: %s\n", d.CPU)
	result += fmt.Sprintf("RAM: %s\n", d.RAM)
	result += fmt.Sprintf("Resolution: %s\n", d.Resolution)
	result += fmt.Sprintf("Density: %s\n", d.Density)

	return textResult(result), nil
}

func (s *MCPServer) handleDeviceReboot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, _ := request.GetArguments()["mode"].(string)
	if mode == "" {
		mode = "system"
	}

	confirmed, err := s.requestConfirmation(ctx, "Reboot Device",
		fmt.Sprintf("Device: %s\nTarget: %s\n\nThe device will disconnect while it restarts.", s.app.GetSession().CurrentDevice, mode))
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return textResult("Reboot cancelled by user"), nil
	}

	if err := s.app.Reboot(mode); err != nil {
		return nil, fmt.Errorf("failed to reboot: %w", err)
	}
	return textResult(fmt.Sprintf("Rebooting into %s", mode)), nil
}

func (s *MCPServer) handleRemoteKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := stringArg(request.GetArguments(), "key")
	if err != nil {
		return nil, err
	}

	if err := s.app.SendKey(key); err != nil {
		return nil, fmt.Errorf("failed to send key: %w", err)
	}
	return textResult(fmt.Sprintf("Pressed %s", key)), nil
}

func (s *MCPServer) handleRemoteText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := stringArg(request.GetArguments(), "text")
	if err != nil {
		return nil, err
	}

	if err := s.app.SendText(text); err != nil {
		return nil, fmt.Errorf("failed to send text: %w", err)
	}
	return textResult(fmt.Sprintf("Typed %d character(s)", len([]rune(text)))), nil
}

func (s *MCPServer) handleQuickCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := stringArg(request.GetArguments(), "name")
	if err != nil {
		return nil, err
	}

	output, err := s.app.RunQuickCommand(name)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return textResult(output), nil
}

func formatToggles(t Toggles) string {
	onOff := func(v bool) string {
		if v {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("layout: %s\noverdraw: %s\npointer: %s\n", onOff(t.Layout), onOff(t.Overdraw), onOff(t.Pointer))
}

func (s *MCPServer) handleToggleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toggles, err := s.app.GetToggles()
	if err != nil {
		return nil, fmt.Errorf("failed to read toggles: %w", err)
	}
	return textResult(formatToggles(toggles)), nil
}

func (s *MCPServer) handleToggleSet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	on, ok := args["on"].(bool)
	if !ok {
		return nil, fmt.Errorf("on is required")
	}

	toggles, err := s.app.SetToggle(name, on)
	if err != nil {
		return nil, fmt.Errorf("failed to set toggle: %w", err)
	}
	return textResult(formatToggles(toggles)), nil
}
