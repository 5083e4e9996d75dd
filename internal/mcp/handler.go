package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shibaleo/repomcp/internal/jsonrpc"
	"github.com/shibaleo/repomcp/internal/modules"
)

const (
	protocolVersion = "2025-03-26"
	serverName      = "repomcp"
	serverVersion   = "0.1.0"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ProcessRequest routes a JSON-RPC request to the appropriate handler.
// Called by the transport middleware.
func (h *Handler) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req), nil
	case "initialized":
		return nil, nil
	case "tools/list":
		return h.handleToolsList(ctx)
	case "tools/call":
		return h.handleToolCall(ctx, req)
	case "prompts/list":
		return h.handlePromptsList(ctx)
	case "prompts/get":
		return h.handlePromptsGet(ctx, req)
	default:
		return nil, &jsonrpc.Error{Code: MethodNotFound, Message: "Method not found"}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc.Request) *InitializeResult {
	return &InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: ServerCapabilities{
			Tools:   &ToolsCapability{},
			Prompts: &PromptsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
	}
}

func (h *Handler) handleToolsList(ctx context.Context) (*ToolsListResult, *jsonrpc.Error) {
	tools := modules.AllTools()
	if tools == nil {
		tools = []modules.Tool{}
	}
	return &ToolsListResult{Tools: tools}, nil
}

func (h *Handler) handleToolCall(ctx context.Context, req *jsonrpc.Request) (*ToolCallResult, *jsonrpc.Error) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params"}
	}

	var params ToolCallParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params structure"}
	}

	if params.Name == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "name is required"}
	}

	m, _, ok := modules.LookupTool(params.Name)
	if !ok {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: fmt.Sprintf("Unknown tool: %s", params.Name)}
	}

	result, err := modules.Run(ctx, params.Name, params.Arguments)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InternalError, Message: err.Error()}
	}

	// Apply compact format unless format=json is explicitly requested
	if !result.IsError {
		if f, _ := params.Arguments["format"].(string); f != "json" {
			result.Content[0].Text = modules.ApplyCompact(m, params.Name, result.Content[0].Text)
		}
	}

	return result, nil
}

func (h *Handler) handlePromptsList(ctx context.Context) (*PromptsListResult, *jsonrpc.Error) {
	return &PromptsListResult{Prompts: promptDefinitions}, nil
}

func (h *Handler) handlePromptsGet(ctx context.Context, req *jsonrpc.Request) (*PromptsGetResult, *jsonrpc.Error) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params"}
	}

	var params PromptsGetParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params structure"}
	}

	if params.Name == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "name is required"}
	}

	if params.Name != "greet_user" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: fmt.Sprintf("prompt not found: %s", params.Name)}
	}

	userName, _ := params.Arguments["name"].(string)
	if userName == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "argument name is required"}
	}
	style, _ := params.Arguments["style"].(string)

	return &PromptsGetResult{
		Description: "Generate a greeting prompt",
		Messages: []PromptMessage{
			{
				Role: "user",
				Content: PromptContent{
					Type: "text",
					Text: renderGreetUser(userName, style),
				},
			},
		},
	}, nil
}
