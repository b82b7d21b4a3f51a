package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/scriba/internal/graph"
	"github.com/kalambet/scriba/internal/transcript"
)

// MCPCalendar lists meetings for the MCP layer.
type MCPCalendar interface {
	ListEvents(ctx context.Context, userID string, from, to time.Time) ([]graph.Event, error)
}

// MCPAggregator assembles context bundles for the MCP tools.
type MCPAggregator interface {
	BuildSummarizeBundle(ctx context.Context, userID, chatID string) (transcript.Bundle, error)
	BuildAnalyzeBundle(ctx context.Context, userID, eventID string) (transcript.Bundle, error)
}

// MCPSummarizer turns bundles into text.
type MCPSummarizer interface {
	Summarize(ctx context.Context, b transcript.Bundle) string
	Analyze(ctx context.Context, b transcript.Bundle) string
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Calendar   MCPCalendar
	Aggregator MCPAggregator
	Summarizer MCPSummarizer
}

// NewMCPServer creates an MCP server exposing the meeting tools to agent hosts.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"scriba",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("scriba — meeting assistant: list, summarize, and analyze a user's meetings."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_meetings",
			mcp.WithDescription("List a user's calendar meetings over the next 7 days."),
			mcp.WithString("user", mcp.Description("User principal name or id"), mcp.Required()),
		),
		mcpListMeetings(deps),
	)

	s.AddTool(
		mcp.NewTool("summarize_meeting",
			mcp.WithDescription("Summarize the live meeting of a chat, including past-transcript context."),
			mcp.WithString("user", mcp.Description("User principal name or id"), mcp.Required()),
			mcp.WithString("chat", mcp.Description("Chat id the meeting was scheduled in"), mcp.Required()),
		),
		mcpSummarizeMeeting(deps),
	)

	s.AddTool(
		mcp.NewTool("analyze_meeting",
			mcp.WithDescription("Cross-reference one calendar meeting against the user's full meeting history."),
			mcp.WithString("user", mcp.Description("User principal name or id"), mcp.Required()),
			mcp.WithString("event", mcp.Description("Calendar event id"), mcp.Required()),
		),
		mcpAnalyzeMeeting(deps),
	)

	return s
}

func mcpListMeetings(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}

		now := time.Now()
		events, err := deps.Calendar.ListEvents(ctx, user, now, now.Add(7*24*time.Hour))
		if err != nil {
			return mcpError(fmt.Sprintf("listing meetings failed: %v", err)), nil
		}

		type meetingResult struct {
			ID      string `json:"id"`
			Subject string `json:"subject"`
			Start   string `json:"start"`
			End     string `json:"end"`
			Online  bool   `json:"online"`
		}

		results := make([]meetingResult, len(events))
		for i, ev := range events {
			results[i] = meetingResult{
				ID:      ev.ID,
				Subject: ev.Subject,
				Start:   ev.Start.Format(time.RFC3339),
				End:     ev.End.Format(time.RFC3339),
				Online:  ev.JoinURL != "",
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSummarizeMeeting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		chat, err := req.RequireString("chat")
		if err != nil {
			return mcpError("chat is required"), nil
		}

		bundle, err := deps.Aggregator.BuildSummarizeBundle(ctx, user, chat)
		if err != nil {
			return mcpError(fmt.Sprintf("building meeting context failed: %v", err)), nil
		}
		return mcpText(deps.Summarizer.Summarize(ctx, bundle)), nil
	}
}

func mcpAnalyzeMeeting(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		user, err := req.RequireString("user")
		if err != nil {
			return mcpError("user is required"), nil
		}
		event, err := req.RequireString("event")
		if err != nil {
			return mcpError("event is required"), nil
		}

		bundle, err := deps.Aggregator.BuildAnalyzeBundle(ctx, user, event)
		if err != nil {
			return mcpError(fmt.Sprintf("building analysis context failed: %v", err)), nil
		}
		return mcpText(deps.Summarizer.Analyze(ctx, bundle)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
