package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WebSearch(t *testing.T) {
	p := New()

	calls := p.Parse(`I'll look that up. [TOOL: web_search("Python tutorials")]`)
	require.Len(t, calls, 1)

	assert.Equal(t, "web_search", calls[0].ToolName)
	assert.Equal(t, map[string]string{"query": "Python tutorials"}, calls[0].Parameters)
	assert.False(t, calls[0].RequiresConfirmation)
}

func TestParse_WriteFileRequiresConfirmation(t *testing.T) {
	p := New()

	calls := p.Parse(`[TOOL: write_file("notes.txt")]`)
	require.Len(t, calls, 1)

	assert.Equal(t, "write_file", calls[0].ToolName)
	assert.Equal(t, "notes.txt", calls[0].Parameters["path"])
	assert.True(t, calls[0].RequiresConfirmation)
}

func TestParse_NoPattern(t *testing.T) {
	p := New()

	calls := p.Parse("Just a plain answer with no tools.")
	assert.Empty(t, calls)
}

func TestParse_MultipleCallsInOrder(t *testing.T) {
	p := New()

	calls := p.Parse(`First [TOOL: read_file("a.txt")] then [TOOL: web_search("go testing")] done.`)
	require.Len(t, calls, 2)

	assert.Equal(t, "read_file", calls[0].ToolName)
	assert.Equal(t, "a.txt", calls[0].Parameters["path"])
	assert.Equal(t, "web_search", calls[1].ToolName)
}

func TestParse_EmptyArguments(t *testing.T) {
	p := New()

	calls := p.Parse("[TOOL: current_time()]")
	require.Len(t, calls, 1)

	assert.Equal(t, "current_time", calls[0].ToolName)
	assert.Empty(t, calls[0].Parameters)
}

func TestParse_UnknownToolPassedThrough(t *testing.T) {
	p := New()

	calls := p.Parse("[TOOL: teleport(home)]")
	require.Len(t, calls, 1)

	assert.Equal(t, "teleport", calls[0].ToolName)
	assert.False(t, calls[0].RequiresConfirmation)
}

func TestParse_SchemaPositionalMapping(t *testing.T) {
	p := New(WithSchemaLookup(func(name string) []string {
		if name == "write_file" {
			return []string{"path", "content"}
		}
		return nil
	}))

	calls := p.Parse(`[TOOL: write_file("out.txt", "hello, world")]`)
	require.Len(t, calls, 1)

	assert.Equal(t, "out.txt", calls[0].Parameters["path"])
	assert.Equal(t, "hello, world", calls[0].Parameters["content"])
}

func TestParse_ConfirmPolicyOverride(t *testing.T) {
	p := New(WithConfirmPolicy(func(name string) bool {
		return name == "web_search"
	}))

	calls := p.Parse(`[TOOL: web_search("anything")]`)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].RequiresConfirmation)
}

func TestParse_CommaInsideQuotesNotSplit(t *testing.T) {
	p := New()

	calls := p.Parse(`[TOOL: web_search("go, the language")]`)
	require.Len(t, calls, 1)

	assert.Equal(t, "go, the language", calls[0].Parameters["query"])
}

func TestParse_MultiArgWithoutSchemaYieldsEmptyParams(t *testing.T) {
	p := New()

	calls := p.Parse(`[TOOL: write_file("a.txt", "content")]`)
	require.Len(t, calls, 1)

	// Without a schema there is no safe way to name two positional args.
	assert.Empty(t, calls[0].Parameters)
	assert.True(t, calls[0].RequiresConfirmation)
}

func TestParse_SingleQuotes(t *testing.T) {
	p := New()

	calls := p.Parse(`[TOOL: read_file('notes/todo.md')]`)
	require.Len(t, calls, 1)
	assert.Equal(t, "notes/todo.md", calls[0].Parameters["path"])
}

func TestDefaultConfirmPolicy(t *testing.T) {
	assert.True(t, DefaultConfirmPolicy("write_file"))
	assert.True(t, DefaultConfirmPolicy("delete_file"))
	assert.True(t, DefaultConfirmPolicy("system_command"))
	assert.False(t, DefaultConfirmPolicy("read_file"))
	assert.False(t, DefaultConfirmPolicy("web_search"))
}
