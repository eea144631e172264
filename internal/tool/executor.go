package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/internal/metrics"
	"github.com/assistd-ai/assistd/pkg/types"
)

// ErrUnknownTool indicates a call naming a tool the registry does not hold.
var ErrUnknownTool = errors.New("unknown tool")

// Executor validates tool calls and runs them subject to confirmation and
// enablement policy. It is the failure boundary between tool bodies and
// the orchestrator: Execute never returns an error, only a ToolResult.
type Executor struct {
	registry *Registry
	sandbox  *Sandbox
	commands types.CommandsConfig
	bus      *event.Bus
}

// NewExecutor creates an executor over the given registry. bus may be nil.
func NewExecutor(registry *Registry, sandbox *Sandbox, commands types.CommandsConfig, bus *event.Bus) *Executor {
	return &Executor{
		registry: registry,
		sandbox:  sandbox,
		commands: commands,
		bus:      bus,
	}
}

// Registry returns the underlying registry.
func (e *Executor) Registry() *Registry { return e.registry }

// Validate checks a tool call against the tool's declared parameter
// schema. A nil return means the call is well-formed.
func (e *Executor) Validate(call types.ToolCall) error {
	if _, ok := e.registry.Get(call.ToolName); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, call.ToolName)
	}

	schema, ok := e.registry.Schema(call.ToolName)
	if !ok {
		return nil
	}

	doc := make(map[string]any, len(call.Parameters))
	for k, v := range call.Parameters {
		doc[k] = v
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid parameters for %s: %w", call.ToolName, err)
	}
	return nil
}

// Enabled reports whether a tool is administratively enabled. System
// command execution is gated by a global switch; everything else is
// enabled by default.
func (e *Executor) Enabled(meta types.ToolMetadata) bool {
	if meta.Category == types.CategorySystem && meta.Name == "system_command" {
		return e.commands.Enabled
	}
	return true
}

// Execute runs a tool call attributed to sessionID. confirmed tells
// whether the caller has approved a confirmation-gated tool; when it is
// required and absent, execution is refused before any side effect.
func (e *Executor) Execute(ctx context.Context, sessionID string, call types.ToolCall, confirmed bool) *types.ToolResult {
	logging.Audit(sessionID, "tool_call", call.ToolName).
		Bool("confirmed", confirmed).
		Msg("tool call requested")

	t, ok := e.registry.Get(call.ToolName)
	if !ok {
		metrics.ToolExecutions.WithLabelValues(call.ToolName, metrics.OutcomeUnknownTool).Inc()
		return &types.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("Tool not found: %s", call.ToolName),
		}
	}

	meta := t.Metadata()

	if meta.RequiresConfirmation && !confirmed {
		metrics.ToolExecutions.WithLabelValues(call.ToolName, metrics.OutcomeRefused).Inc()
		return &types.ToolResult{
			Success:  false,
			Error:    "Tool requires user confirmation",
			Metadata: map[string]any{"requires_confirmation": true},
		}
	}

	if !e.Enabled(meta) {
		metrics.ToolExecutions.WithLabelValues(call.ToolName, metrics.OutcomeDisabled).Inc()
		return &types.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("Tool %s is disabled", call.ToolName),
		}
	}

	toolCtx := &Context{
		SessionID: sessionID,
		Sandbox:   e.sandbox,
	}

	start := time.Now()
	output, err := e.run(ctx, t, toolCtx, call.Parameters)
	elapsed := time.Since(start)

	metrics.ToolDuration.WithLabelValues(call.ToolName).Observe(elapsed.Seconds())

	result := &types.ToolResult{
		Success:       err == nil,
		Output:        output,
		ExecutionTime: elapsed,
	}
	if err != nil {
		result.Output = nil
		result.Error = err.Error()
		metrics.ToolExecutions.WithLabelValues(call.ToolName, metrics.OutcomeError).Inc()
		logging.Error().Err(err).
			Str("tool", call.ToolName).
			Str("session", sessionID).
			Msg("tool execution failed")
	} else {
		metrics.ToolExecutions.WithLabelValues(call.ToolName, metrics.OutcomeSuccess).Inc()
	}

	if e.bus != nil {
		e.bus.Publish(event.Event{
			Type: event.ToolExecuted,
			Data: event.ToolExecutedData{
				SessionID: sessionID,
				ToolName:  call.ToolName,
				Success:   result.Success,
				Duration:  elapsed.String(),
			},
		})
	}

	return result
}

// run invokes the tool body, converting panics into errors so a broken
// tool cannot take down the request.
func (e *Executor) run(ctx context.Context, t Tool, toolCtx *Context, params map[string]string) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return t.Execute(ctx, toolCtx, params)
}
