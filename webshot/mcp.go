package webshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/snapstitch/export"
)

// RegisterMCP registers the capture tools on an MCP server.
func (r *Runner) RegisterMCP(srv *mcp.Server) {
	r.registerCaptureTool(srv)
	r.registerStatusTool(srv)
	r.registerHistoryTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		var res mcp.CallToolResult
		res.SetError(fmt.Errorf("marshal: %w", err))
		return &res, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res, nil
}

// --- capture ---

type captureToolReq struct {
	URL        string `json:"url"`
	Format     string `json:"format,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

func (r *Runner) registerCaptureTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "snapstitch_capture",
		Description: "Capture a full-length screenshot of a URL by scrolling and stitching viewport frames. Blocks until the image is written.",
		InputSchema: inputSchema(map[string]any{
			"url":         map[string]any{"type": "string", "description": "Page URL (http/https)"},
			"format":      map[string]any{"type": "string", "description": "Output format: png (default) or pdf"},
			"output_path": map[string]any{"type": "string", "description": "Destination file; derived from page title when empty"},
		}, []string{"url"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in captureToolReq
		if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err))
		}
		sum, err := r.Capture(ctx, Request{
			URL:        in.URL,
			Format:     export.Format(in.Format),
			OutputPath: in.OutputPath,
		})
		if err != nil {
			return errorResult(err)
		}
		return textResult(sum)
	})
}

// --- status ---

func (r *Runner) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "snapstitch_status",
		Description: "Report the phase and progress of the current capture session.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state, ok := r.Status()
		if !ok {
			return textResult(map[string]any{"active": false})
		}
		return textResult(map[string]any{"active": true, "session": state})
	})
}

// --- history ---

type historyToolReq struct {
	Limit int `json:"limit,omitempty"`
}

func (r *Runner) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "snapstitch_history",
		Description: "List recent capture sessions, newest first.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum entries (default 50)"},
		}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in historyToolReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				return errorResult(fmt.Errorf("invalid arguments: %w", err))
			}
		}
		entries, err := r.History(ctx, in.Limit)
		if err != nil {
			return errorResult(err)
		}
		return textResult(map[string]any{"sessions": entries})
	})
}
