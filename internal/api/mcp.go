package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shirase/yoyaku/internal/delivery"
	"github.com/shirase/yoyaku/internal/event"
	"github.com/shirase/yoyaku/internal/orchestrator"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Orch *orchestrator.Orchestrator
	Hub  *delivery.Hub
}

// NewMCPServer creates an MCP server exposing summarization to agent
// clients over the same orchestrator the HTTP surfaces use.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"yoyaku",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("yoyaku — AI summarization daemon for selected text, pages, and documents."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("summarize_text",
			mcp.WithDescription("Generate an AI summary of the given text."),
			mcp.WithString("text", mcp.Description("The text to summarize"), mcp.Required()),
		),
		mcpSummarizeText(deps),
	)

	s.AddTool(
		mcp.NewTool("test_api_key",
			mcp.WithDescription("Check whether the configured summarization API key is valid."),
		),
		mcpTestAPIKey(deps),
	)

	return s
}

func mcpSummarizeText(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		// Subscribe a private destination so delivery succeeds directly and
		// nothing leaks into the popup fallback slots.
		destination := "mcp-" + uuid.NewString()
		ch, cancel := deps.Hub.Subscribe(destination)
		defer cancel()
		go func() {
			for range ch {
			}
		}()

		terminal := deps.Orch.Run(ctx, orchestrator.Request{
			SourceText:  text,
			Destination: destination,
		})

		if terminal.Kind != event.KindComplete {
			return mcpError(terminal.Message), nil
		}
		return mcpText(terminal.Summary), nil
	}
}

func mcpTestAPIKey(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := deps.Orch.TestKey(ctx)
		return mcpText(fmt.Sprintf("API key status: %s", status)), nil
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
