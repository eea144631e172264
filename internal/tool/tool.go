// Package tool provides the tool framework: registration, validation,
// policy-gated execution, and the built-in tool set.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assistd-ai/assistd/pkg/types"
)

// Tool is the capability interface every tool implements. Tools declare
// static metadata and expose one execution entry point; validation and
// policy gates live in the Executor.
type Tool interface {
	// Metadata returns the tool's static declaration.
	Metadata() types.ToolMetadata

	// Execute runs the tool with the given named parameters and returns
	// the output payload. Failures are returned as errors; the executor
	// wraps them into a ToolResult.
	Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error)
}

// Context provides execution context to tools. Execution is always
// attributed to a session for audit purposes.
type Context struct {
	SessionID string
	Sandbox   *Sandbox
}

// ParameterSchema derives a JSON Schema document from a tool's declared
// parameters. The executor compiles it once per registration.
func ParameterSchema(meta types.ToolMetadata) json.RawMessage {
	properties := make(map[string]any, len(meta.Parameters))
	var required []string

	for _, p := range meta.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	data, err := json.Marshal(doc)
	if err != nil {
		// The document is built from plain maps; this cannot fail.
		panic(fmt.Sprintf("tool: marshal parameter schema for %s: %v", meta.Name, err))
	}
	return data
}
