package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerWhoAmITool(srv, svc)
	registerWriteEntryTool(srv, svc)
	registerListEntriesTool(srv, svc)
	registerMoodCalendarTool(srv, svc)
	registerGetSettingsTool(srv, svc)
	registerUpdateSettingsTool(srv, svc)
}

func registerWhoAmITool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"whoami",
		mcp.WithDescription("Show the signed in journal user."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := svc.WhoAmI()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(user)
	})
}

func registerWriteEntryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"write_entry",
		mcp.WithDescription("Write a journal entry with a mood score."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Free text of the entry."),
		),
		mcp.WithNumber("mood",
			mcp.Required(),
			mcp.Description("Mood score from 1 (awful) to 10 (great)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Text string `json:"text"`
			Mood int    `json:"mood"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		dto, err := svc.WriteEntry(ctx, args.Text, args.Mood)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListEntriesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_entries",
		mcp.WithDescription("List journal entries, newest first."),
		mcp.WithString("query",
			mcp.Description("Only return entries whose text contains this."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		entries, err := svc.ListEntries(ctx, args.Query, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	})
}

func registerMoodCalendarTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"mood_calendar",
		mcp.WithDescription("Average mood and entry count per day."),
		mcp.WithString("month",
			mcp.Description("Optional month as YYYY-MM."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		month := request.GetString("month", "")
		days, err := svc.Calendar(ctx, month)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"days":  days,
			"count": len(days),
		})
	})
}

func registerGetSettingsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_settings",
		mcp.WithDescription("Fetch display name, reminder time, theme and timezone."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s, err := svc.Settings(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(s)
	})
}

func registerUpdateSettingsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_settings",
		mcp.WithDescription("Change settings. Omitted fields keep their value; the whole record is saved."),
		mcp.WithString("display_name",
			mcp.Description("Name used in greetings."),
		),
		mcp.WithString("reminder_time",
			mcp.Description("Daily reminder as HH:MM, 24 hour clock."),
		),
		mcp.WithString("theme",
			mcp.Description("Color theme."),
			mcp.Enum("warm", "citrus", "sunset"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA zone such as Europe/Berlin."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			DisplayName  *string `json:"display_name"`
			ReminderTime *string `json:"reminder_time"`
			Theme        *string `json:"theme"`
			Timezone     *string `json:"timezone"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		saved, err := svc.UpdateSettings(ctx, SettingsUpdate{
			DisplayName:  args.DisplayName,
			ReminderTime: args.ReminderTime,
			Theme:        args.Theme,
			Timezone:     args.Timezone,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(saved)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
