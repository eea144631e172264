package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assistd-ai/assistd/pkg/types"
)

// stubTool is a minimal tool for registry tests.
type stubTool struct {
	meta types.ToolMetadata
	fn   func(params map[string]string) (any, error)
}

func (s *stubTool) Metadata() types.ToolMetadata { return s.meta }

func (s *stubTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	if s.fn == nil {
		return "ok", nil
	}
	return s.fn(params)
}

func newStub(name string, category types.ToolCategory, confirm bool) *stubTool {
	return &stubTool{meta: types.ToolMetadata{
		Name:        name,
		Description: name + " stub",
		Category:    category,
		Parameters: []types.ToolParameter{
			{Name: "first", Type: "string", Required: true},
			{Name: "second", Type: "string"},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: confirm,
	}}
}

func TestRegistry_ListInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("beta", types.CategoryUtility, false))
	r.Register(newStub("alpha", types.CategoryUtility, false))
	r.Register(newStub("gamma", types.CategoryWeb, false))

	metas := r.List()
	require.Len(t, metas, 3)
	assert.Equal(t, "beta", metas[0].Name)
	assert.Equal(t, "alpha", metas[1].Name)
	assert.Equal(t, "gamma", metas[2].Name)
}

func TestRegistry_ReRegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("dup", types.CategoryUtility, false))
	r.Register(newStub("dup", types.CategoryUtility, true))

	metas := r.List()
	require.Len(t, metas, 1)
	assert.True(t, metas[0].RequiresConfirmation)
}

func TestRegistry_ByCategory(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("a", types.CategoryWeb, false))
	r.Register(newStub("b", types.CategoryUtility, false))
	r.Register(newStub("c", types.CategoryWeb, false))

	web := r.ByCategory(types.CategoryWeb)
	require.Len(t, web, 2)
	assert.Equal(t, "a", web[0].Name)
	assert.Equal(t, "c", web[1].Name)
}

func TestRegistry_ParameterNames(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("x", types.CategoryUtility, false))

	assert.Equal(t, []string{"first", "second"}, r.ParameterNames("x"))
	assert.Nil(t, r.ParameterNames("missing"))
}

func TestRegistry_RequiresConfirmation(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("gated", types.CategoryUtility, true))
	r.Register(newStub("open", types.CategoryUtility, false))

	required, known := r.RequiresConfirmation("gated")
	assert.True(t, known)
	assert.True(t, required)

	required, known = r.RequiresConfirmation("open")
	assert.True(t, known)
	assert.False(t, required)

	_, known = r.RequiresConfirmation("missing")
	assert.False(t, known)
}

func TestRegistry_SchemaCompiled(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("x", types.CategoryUtility, false))

	schema, ok := r.Schema("x")
	require.True(t, ok)

	assert.NoError(t, schema.Validate(map[string]any{"first": "v"}))
	assert.Error(t, schema.Validate(map[string]any{"second": "v"}), "missing required parameter")
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()
	r.Register(newStub("a", types.CategoryWeb, false))
	r.Register(newStub("b", types.CategoryUtility, false))

	stats := r.Stats(func(meta types.ToolMetadata) bool { return meta.Name != "b" })
	assert.Equal(t, 2, stats.TotalTools)
	assert.Equal(t, 1, stats.EnabledTools)
	assert.Equal(t, 1, stats.ByCategory["web"])
	assert.Equal(t, 2, stats.ByDangerLevel["safe"])
}

func TestRegistry_ProspectusListsToolsAndGrammar(t *testing.T) {
	cfg := &types.Config{}
	cfg.Commands.Allowed = []string{"ls"}
	r := DefaultRegistry(cfg)

	prospectus := r.Prospectus()

	assert.Contains(t, prospectus, "FILE_SYSTEM TOOLS:")
	assert.Contains(t, prospectus, "read_file")
	assert.Contains(t, prospectus, "web_search")
	assert.Contains(t, prospectus, "system_command")
	assert.Contains(t, prospectus, `[TOOL: web_search("Python tutorials")]`)
}

func TestDefaultRegistry_AllBuiltins(t *testing.T) {
	cfg := &types.Config{}
	r := DefaultRegistry(cfg)

	for _, name := range []string{
		"read_file", "write_file", "delete_file", "list_files", "file_upload",
		"web_search", "web_fetch", "system_command", "current_time",
	} {
		_, ok := r.Get(name)
		assert.True(t, ok, "builtin %s should be registered", name)
	}
}
