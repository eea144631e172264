package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"github.com/assistd-ai/assistd/pkg/types"
)

// SystemCommandTool executes a shell command inside the sandbox directory.
// The command string is parsed with a real shell grammar so that every
// simple command in a pipeline or list is checked against the allowlist;
// string matching alone would miss `ls; rm -rf /`.
type SystemCommandTool struct {
	allowed map[string]bool
	timeout time.Duration
}

// NewSystemCommandTool creates a system_command tool with the given
// allowlist and per-invocation timeout.
func NewSystemCommandTool(allowed []string, timeout time.Duration) *SystemCommandTool {
	set := make(map[string]bool, len(allowed))
	for _, cmd := range allowed {
		set[cmd] = true
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SystemCommandTool{allowed: set, timeout: timeout}
}

func (t *SystemCommandTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "system_command",
		Description: "Execute an allowlisted shell command in the sandbox",
		Category:    types.CategorySystem,
		Parameters: []types.ToolParameter{
			{Name: "command", Type: "string", Description: "Shell command to run", Required: true},
		},
		DangerLevel:          types.DangerDangerous,
		RequiresConfirmation: true,
		Examples:             []string{`[TOOL: system_command("ls -la")]`},
	}
}

func (t *SystemCommandTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	command := strings.TrimSpace(params["command"])
	if command == "" {
		return nil, fmt.Errorf("command is required")
	}

	names, err := commandNames(command)
	if err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no command found in %q", command)
	}
	for _, name := range names {
		if !t.allowed[name] {
			return nil, fmt.Errorf("command not allowed: %s", name)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = toolCtx.Sandbox.Root()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command timed out after %s", t.timeout)
	}

	exitCode := 0
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if runErr != nil {
		return nil, fmt.Errorf("run command: %w", runErr)
	}

	return map[string]any{
		"command":   command,
		"exit_code": exitCode,
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
	}, nil
}

// commandNames parses a shell command and returns the name of every simple
// command it invokes.
func commandNames(command string) ([]string, error) {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)

	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return nil, err
	}

	var names []string
	syntax.Walk(file, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			names = append(names, commandWord(call.Args[0]))
		}
		return true
	})
	return names, nil
}

// commandWord flattens a command-position word into checkable text.
// Expansions become placeholders rather than being dropped, so a name
// built from `$VAR` or `$(...)` always reaches the allowlist check and
// fails it. Every command collected by commandNames must appear in the
// result; skipping one would leave it unchecked.
func commandWord(word *syntax.Word) string {
	var b strings.Builder
	for _, part := range word.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			b.WriteString(p.Value)
		case *syntax.SglQuoted:
			b.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, qp := range p.Parts {
				if lit, ok := qp.(*syntax.Lit); ok {
					b.WriteString(lit.Value)
				} else {
					b.WriteString("$()")
				}
			}
		case *syntax.ParamExp:
			b.WriteString("$" + p.Param.Value)
		default:
			b.WriteString("$()")
		}
	}
	return b.String()
}
