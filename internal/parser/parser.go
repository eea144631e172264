// Package parser extracts structured tool calls from model-generated text.
//
// The grammar is a single bracketed pattern embedded anywhere in the text:
//
//	[TOOL: tool_name(arguments)]
//
// Parsing is best-effort: malformed argument text produces a ToolCall with
// an empty parameter map rather than an error, and unknown tool names are
// passed through for the executor to reject.
package parser

import (
	"regexp"
	"strings"

	"github.com/assistd-ai/assistd/pkg/types"
)

// callPattern matches [TOOL: name(args)] occurrences left to right.
var callPattern = regexp.MustCompile(`\[TOOL:\s*(\w+)\((.*?)\)\]`)

// defaultDangerous is the parse-time safety net: these names force a
// confirmation requirement even when the tool registry knows nothing about
// them. The registry-backed policy supplied by the orchestrator falls back
// to this set for unregistered names.
var defaultDangerous = map[string]bool{
	"write_file":     true,
	"delete_file":    true,
	"system_command": true,
}

// ConfirmPolicy reports whether a tool name requires user confirmation.
type ConfirmPolicy func(toolName string) bool

// SchemaLookup returns the ordered declared parameter names for a tool, or
// nil when the tool is unknown. Positional arguments are mapped onto these
// names in declaration order.
type SchemaLookup func(toolName string) []string

// Parser scans model output for embedded tool calls.
type Parser struct {
	confirm ConfirmPolicy
	schema  SchemaLookup
}

// Option configures a Parser.
type Option func(*Parser)

// WithConfirmPolicy overrides the built-in dangerous-name set.
func WithConfirmPolicy(p ConfirmPolicy) Option {
	return func(pr *Parser) { pr.confirm = p }
}

// WithSchemaLookup enables schema-driven positional parameter mapping.
func WithSchemaLookup(s SchemaLookup) Option {
	return func(pr *Parser) { pr.schema = s }
}

// New creates a Parser. Without options it operates standalone: the static
// danger set and the conventional single-argument mappings apply.
func New(opts ...Option) *Parser {
	p := &Parser{
		confirm: DefaultConfirmPolicy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultConfirmPolicy is the static dangerous-name check used when no
// registry-backed policy is wired in.
func DefaultConfirmPolicy(toolName string) bool {
	return defaultDangerous[toolName]
}

// Parse extracts all tool calls from text, preserving left-to-right order.
// Text with no bracketed pattern yields an empty slice.
func (p *Parser) Parse(text string) []types.ToolCall {
	matches := callPattern.FindAllStringSubmatch(text, -1)
	calls := make([]types.ToolCall, 0, len(matches))

	for _, m := range matches {
		name := m[1]
		calls = append(calls, types.ToolCall{
			ToolName:             name,
			Parameters:           p.mapParameters(name, m[2]),
			RequiresConfirmation: p.confirm(name),
		})
	}

	return calls
}

// mapParameters turns raw parenthesized text into a named parameter map.
// With a declared schema, positional arguments map onto parameter names in
// declaration order. Without one, the original single-argument conventions
// apply; anything more ambiguous yields an empty map.
func (p *Parser) mapParameters(toolName, raw string) map[string]string {
	params := map[string]string{}

	args := splitArgs(raw)
	if len(args) == 0 {
		return params
	}

	if p.schema != nil {
		if names := p.schema(toolName); len(names) > 0 {
			for i, arg := range args {
				if i >= len(names) {
					break
				}
				params[names[i]] = arg
			}
			return params
		}
	}

	if len(args) != 1 {
		return params
	}

	switch {
	case toolName == "web_search":
		params["query"] = args[0]
	case strings.HasSuffix(toolName, "_file") || strings.HasSuffix(toolName, "_files"):
		params["path"] = args[0]
	}
	return params
}

// splitArgs splits the raw argument text on top-level commas, honoring
// single and double quotes, and strips one layer of surrounding quotes
// from each argument.
func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var args []string
	var buf strings.Builder
	var quote rune

	for _, r := range raw {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			buf.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			buf.WriteRune(r)
		case r == ',':
			args = append(args, unquote(buf.String()))
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	args = append(args, unquote(buf.String()))

	return args
}

// unquote trims whitespace and a single layer of matching surrounding
// quote characters.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
