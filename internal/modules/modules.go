package modules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shibaleo/repomcp/internal/logging"
	"github.com/shibaleo/repomcp/internal/observability"
)

// =============================================================================
// Registry
// =============================================================================

// registry holds all registered modules. Registration happens once during
// server construction, lookups afterwards are read-only.
var registry = make(map[string]Module)

// RegisterModule adds a module to the registry
func RegisterModule(m Module) {
	registry[m.Name()] = m
}

// GetModule returns a module by name
func GetModule(name string) (Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// ListModules returns all registered module names, sorted
func ListModules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the registry. Test helper only.
func Reset() {
	registry = make(map[string]Module)
}

// AllTools returns every tool of every registered module, grouped by module
// name order so tools/list output is stable.
func AllTools() []Tool {
	var tools []Tool
	for _, name := range ListModules() {
		tools = append(tools, registry[name].Tools()...)
	}
	return tools
}

// LookupTool resolves a tool name to its owning module and definition.
// Callers invoke tools by bare name, so names must be unique across modules.
func LookupTool(toolName string) (Module, Tool, bool) {
	for _, name := range ListModules() {
		m := registry[name]
		if tool, found := findTool(m.Tools(), toolName); found {
			return m, tool, true
		}
	}
	return nil, Tool{}, false
}

func findTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// =============================================================================
// Tool Execution
// =============================================================================

// toolTimeout is the maximum duration for a single tool execution.
const toolTimeout = 30 * time.Second

var (
	tracer = otel.Tracer("github.com/shibaleo/repomcp/internal/modules")
	meter  = otel.Meter("github.com/shibaleo/repomcp/internal/modules")

	toolCallCounter  metric.Int64Counter
	toolErrorCounter metric.Int64Counter
)

func init() {
	toolCallCounter, _ = meter.Int64Counter("repomcp.tool.calls",
		metric.WithDescription("Number of tool executions"))
	toolErrorCounter, _ = meter.Int64Counter("repomcp.tool.errors",
		metric.WithDescription("Number of failed tool executions"))
}

// Run executes a single tool by name. Params are validated against the
// tool's InputSchema before dispatch. Execution failures come back as an
// error-flagged result, not as a Go error; only infrastructure problems
// (none today) would surface through the second return.
func Run(ctx context.Context, toolName string, params map[string]interface{}) (*ToolCallResult, error) {
	start := time.Now()

	m, tool, ok := LookupTool(toolName)
	if !ok {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Unknown tool: %s", toolName)}},
			IsError: true,
		}, nil
	}

	validated, err := ValidateParams(tool.InputSchema, params)
	if err != nil {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	params = validated

	attrs := []attribute.KeyValue{
		attribute.String("module", m.Name()),
		attribute.String("tool", toolName),
	}
	ctx, span := tracer.Start(ctx, "tools/call", trace.WithAttributes(attrs...))
	defer span.End()
	toolCallCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Timeout keeps a stuck upstream API from holding the connection open
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	result, err := m.ExecuteTool(ctx, toolName, params)
	durationMs := time.Since(start).Milliseconds()
	requestID, _ := logging.CtxRequestID(ctx)

	if err != nil {
		errMsg := err.Error()
		if ctx.Err() == context.DeadlineExceeded {
			errMsg = fmt.Sprintf("Request to %s timed out after %s. The external service did not respond in time.", m.Name(), toolTimeout)
		}
		span.RecordError(err)
		toolErrorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
		observability.LogToolCall(requestID, m.Name(), toolName, durationMs, "error", errMsg)
		logging.From(ctx).Warn("tool execution failed",
			slog.String("module", m.Name()),
			slog.String("tool", toolName),
			slog.Int64("duration_ms", durationMs),
			slog.String("error", errMsg),
		)
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: errMsg}},
			IsError: true,
		}, nil
	}

	observability.LogToolCall(requestID, m.Name(), toolName, durationMs, "success", "")
	logging.From(ctx).Debug("tool executed",
		slog.String("module", m.Name()),
		slog.String("tool", toolName),
		slog.Int64("duration_ms", durationMs),
	)

	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: result}},
	}, nil
}

// ApplyCompact converts a JSON result to compact format (CSV/MD) for a given
// module and tool. Returns the original JSON if the module has no
// CompactConverter.
func ApplyCompact(m Module, toolName, jsonResult string) string {
	if converter, ok := m.(CompactConverter); ok {
		return converter.ToCompact(toolName, jsonResult)
	}
	return jsonResult
}
