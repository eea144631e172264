package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/pkg/types"
)

// Registry manages tool registration and lookup. It is populated once at
// startup and read-only thereafter; the lock exists for the registration
// phase and for tests.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
	order   []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool to the registry. Re-registering a name overwrites
// the previous entry with a warning. A schema compilation failure is
// isolated: the tool is still registered, it just skips schema validation.
func (r *Registry) Register(t Tool) {
	meta := t.Metadata()
	name := meta.Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		logging.Warn().Str("tool", name).Msg("tool already registered, overwriting")
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t

	schemaDoc := ParameterSchema(meta)
	schema, err := jsonschema.CompileString(name+".schema.json", string(schemaDoc))
	if err != nil {
		logging.Error().Err(err).Str("tool", name).Msg("failed to compile parameter schema")
		delete(r.schemas, name)
	} else {
		r.schemas[name] = schema
	}

	logging.Info().Str("tool", name).Str("category", string(meta.Category)).Msg("registered tool")
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Schema returns the compiled parameter schema for a tool, if it has one.
func (r *Registry) Schema(name string) (*jsonschema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// List returns metadata for all tools in registration order. The order is
// stable for test determinism.
func (r *Registry) List() []types.ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metas := make([]types.ToolMetadata, 0, len(r.order))
	for _, name := range r.order {
		metas = append(metas, r.tools[name].Metadata())
	}
	return metas
}

// ByCategory returns metadata for tools in the given category, in
// registration order.
func (r *Registry) ByCategory(category types.ToolCategory) []types.ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var metas []types.ToolMetadata
	for _, name := range r.order {
		if meta := r.tools[name].Metadata(); meta.Category == category {
			metas = append(metas, meta)
		}
	}
	return metas
}

// ParameterNames returns the declared parameter names for a tool in
// declaration order, or nil for unknown tools. The response parser uses
// this for positional-to-named argument mapping.
func (r *Registry) ParameterNames(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil
	}
	meta := t.Metadata()
	names := make([]string, 0, len(meta.Parameters))
	for _, p := range meta.Parameters {
		names = append(names, p.Name)
	}
	return names
}

// RequiresConfirmation reports the declared confirmation requirement for a
// registered tool name. The second return is false for unknown names so
// callers can fall back to a static policy.
func (r *Registry) RequiresConfirmation(name string) (bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return false, false
	}
	return t.Metadata().RequiresConfirmation, true
}

// Stats summarizes the registered tool set.
func (r *Registry) Stats(enabled func(types.ToolMetadata) bool) types.ToolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := types.ToolStats{
		TotalTools:    len(r.order),
		ByCategory:    make(map[string]int),
		ByDangerLevel: make(map[string]int),
	}
	for _, name := range r.order {
		meta := r.tools[name].Metadata()
		stats.ByCategory[string(meta.Category)]++
		stats.ByDangerLevel[string(meta.DangerLevel)]++
		if enabled == nil || enabled(meta) {
			stats.EnabledTools++
		}
	}
	return stats
}

// prospectusCategories fixes the category order of the generated tool
// description.
var prospectusCategories = []types.ToolCategory{
	types.CategoryFileSystem,
	types.CategoryWeb,
	types.CategorySystem,
	types.CategoryUtility,
}

// Prospectus renders a description of all available tools for the model,
// including the tool-call grammar the response parser understands.
func (r *Registry) Prospectus() string {
	var b strings.Builder
	b.WriteString("Available tools:\n\n")

	for _, category := range prospectusCategories {
		metas := r.ByCategory(category)
		if len(metas) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s TOOLS:\n", strings.ToUpper(string(category)))
		for _, meta := range metas {
			params := make([]string, 0, len(meta.Parameters))
			for _, p := range meta.Parameters {
				params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Type))
			}
			fmt.Fprintf(&b, "- %s(%s): %s\n", meta.Name, strings.Join(params, ", "), meta.Description)
			if len(meta.Examples) > 0 {
				fmt.Fprintf(&b, "  Example: %s\n", meta.Examples[0])
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(`To use a tool, respond with:
[TOOL: tool_name(parameter1, parameter2)]

For example:
[TOOL: web_search("Python tutorials")]
[TOOL: read_file("notes.txt")]
`)
	return b.String()
}
