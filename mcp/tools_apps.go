package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerAppTools registers app management tools
func (s *MCPServer) registerAppTools() {
	// app_list - List packages with debloat info
	s.server.AddTool(
		mcp.NewTool("app_list",
			mcp.WithDescription("List enabled packages on the selected device with their debloat list, removal safety and description"),
			mcp.WithString("scope",
				mcp.Description("Which packages to list"),
				mcp.Enum("all", "system", "user"),
			),
			mcp.WithString("safety",
				mcp.Description("Removal recommendation to keep (e.g. recommended, advanced, expert, unsafe)"),
			),
			mcp.WithString("oem",
				mcp.Description("Debloat list to keep (e.g. Google, Oem, Carrier, Misc, Aosp)"),
			),
			mcp.WithString("search",
				mcp.Description("Case-insensitive text matched against package id and name"),
			),
		),
		s.handleAppList,
	)

	// app_action - Apply an action to one package
	s.server.AddTool(
		mcp.NewTool("app_action",
			mcp.WithDescription("Uninstall (for user 0), disable, enable, clear data or force stop one package. Uninstall and clear ask for confirmation."),
			mcp.WithString("package_name",
				mcp.Required(),
				mcp.Description("Package name (e.g., com.example.app)"),
			),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Description("Action to apply"),
				mcp.Enum("uninstall", "disable", "enable", "clear", "stop"),
			),
		),
		s.handleAppAction,
	)
}

func (s *MCPServer) handleAppList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	filter := AppFilter{Scope: "all", Safety: "all", OEM: "all"}
	if v, ok := args["scope"].(string); ok && v != "" {
		filter.Scope = v
	}
	if v, ok := args["safety"].(string); ok && v != "" {
		filter.Safety = v
	}
	if v, ok := args["oem"].(string); ok && v != "" {
		filter.OEM = v
	}
	if v, ok := args["search"].(string); ok {
		filter.Search = v
	}

	apps, err := s.app.ListApps(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}

	if len(apps) == 0 {
		return textResult("No packages match"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d package(s):\n\n", len(apps))
	for _, app := range apps {
		fmt.Fprintf(&b, "- %s", app.ID)
		if app.Name != "" && app.Name != app.ID {
			fmt.Fprintf(&b, " (%s)", app.Name)
		}
		fmt.Fprintf(&b, " [%s, %s]\n", app.List, app.Removal)
	}

	jsonData, _ := json.MarshalIndent(apps, "", "  ")
	return textResult(b.String(), fmt.Sprintf("\nJSON data:\n```json\n%s\n```", string(jsonData))), nil
}

func (s *MCPServer) handleAppAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	packageName, err := stringArg(args, "package_name")
	if err != nil {
		return nil, err
	}
	action, err := stringArg(args, "action")
	if err != nil {
		return nil, err
	}

	var warning string
	switch action {
	case "uninstall":
		warning = "This removes the app for the current user!"
	case "clear":
		warning = "This deletes all app data including saved files, settings, and cache!"
	}
	if warning != "" {
		confirmed, err := s.requestConfirmation(ctx, "App "+action,
			fmt.Sprintf("Package: %s\n\n%s", packageName, warning))
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return textResult(fmt.Sprintf("%s cancelled by user", action)), nil
		}
	}

	output, err := s.app.RunAppAction(packageName, action)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", action, packageName, err)
	}
	return textResult(fmt.Sprintf("%s %s\n%s", action, packageName, output)), nil
}
