package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/internal/parser"
	"github.com/assistd-ai/assistd/internal/provider"
	"github.com/assistd-ai/assistd/internal/tool"
	"github.com/assistd-ai/assistd/pkg/types"
)

// Orchestrator drives one chat turn end to end: resolve session, append
// the user message, fetch bounded context, call inference, parse the reply
// for tool calls, append the assistant message, and hand confirmation-
// gated calls back to the caller.
type Orchestrator struct {
	manager  *Manager
	executor *tool.Executor
	llm      provider.Client
	parser   *parser.Parser

	contextWindow int
	temperature   float64
	maxTokens     int
}

// NewOrchestrator wires the turn pipeline together. The response parser is
// built against the executor's registry: declared metadata is the single
// confirmation authority, with the parser's static danger set as fallback
// for unregistered names.
func NewOrchestrator(manager *Manager, executor *tool.Executor, llm provider.Client, cfg *types.Config) *Orchestrator {
	registry := executor.Registry()

	confirm := func(name string) bool {
		if required, known := registry.RequiresConfirmation(name); known {
			return required
		}
		return parser.DefaultConfirmPolicy(name)
	}

	return &Orchestrator{
		manager:  manager,
		executor: executor,
		llm:      llm,
		parser: parser.New(
			parser.WithConfirmPolicy(confirm),
			parser.WithSchemaLookup(registry.ParameterNames),
		),
		contextWindow: cfg.LLM.ContextWindow,
		temperature:   cfg.LLM.Temperature,
		maxTokens:     cfg.LLM.MaxTokens,
	}
}

// Manager returns the session manager.
func (o *Orchestrator) Manager() *Manager { return o.manager }

// Executor returns the tool executor.
func (o *Orchestrator) Executor() *tool.Executor { return o.executor }

// Parser returns the response parser.
func (o *Orchestrator) Parser() *parser.Parser { return o.parser }

// ResolveSession returns the session for the request, creating one when
// the id is absent or no longer live.
func (o *Orchestrator) ResolveSession(id string) *types.Session {
	if id != "" {
		if session, ok := o.manager.GetSession(id); ok {
			return session
		}
	}
	return o.manager.CreateSession(id)
}

// ProcessTurn handles a blocking (non-streaming) turn.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	session := o.ResolveSession(req.SessionID)

	if _, err := o.manager.AddMessage(session.ID, types.RoleUser, req.Message, nil); err != nil {
		return nil, err
	}

	messages := o.inferenceContext(session.ID)

	reply, err := o.llm.Chat(ctx, o.buildRequest(req, messages))
	if err != nil {
		return nil, err
	}

	return o.finishTurn(session.ID, reply)
}

// EmitFunc delivers one stream event to the caller. A non-nil return
// cancels the turn.
type EmitFunc func(ev types.StreamEvent) error

// errClientGone marks a failed emit, i.e. the caller disconnected.
var errClientGone = errors.New("client disconnected")

// ProcessTurnStream handles a streaming turn. Incremental fragments are
// forwarded as they arrive while the full text accumulates for parsing;
// the grammar needs the closing bracket, so parsing happens once the
// stream ends. If the caller disconnects mid-stream the inference call is
// cancelled and the partial assistant text is not persisted.
func (o *Orchestrator) ProcessTurnStream(ctx context.Context, req types.ChatRequest, emit EmitFunc) error {
	session := o.ResolveSession(req.SessionID)

	if _, err := o.manager.AddMessage(session.ID, types.RoleUser, req.Message, nil); err != nil {
		return err
	}

	if err := emit(types.StreamEvent{Type: types.StreamEventSession, SessionID: session.ID}); err != nil {
		return errClientGone
	}

	messages := o.inferenceContext(session.ID)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var emitErr error
	onChunk := func(chunk string) {
		if emitErr != nil {
			return
		}
		if err := emit(types.StreamEvent{Type: types.StreamEventContent, Content: chunk}); err != nil {
			emitErr = err
			cancel()
		}
	}

	full, err := o.llm.ChatStream(streamCtx, o.buildRequest(req, messages), onChunk)
	if emitErr != nil || streamCtx.Err() != nil {
		logging.Info().Str("session", session.ID).Msg("stream cancelled, dropping partial turn")
		return errClientGone
	}
	if err != nil {
		return err
	}

	resp, err := o.finishTurn(session.ID, full)
	if err != nil {
		return err
	}

	if len(resp.ToolCalls) > 0 {
		if err := emit(types.StreamEvent{Type: types.StreamEventToolCalls, ToolCalls: resp.ToolCalls}); err != nil {
			return errClientGone
		}
	}

	if err := emit(types.StreamEvent{Type: types.StreamEventDone}); err != nil {
		return errClientGone
	}
	return nil
}

// finishTurn parses the completed reply, appends the assistant message
// with the parsed calls embedded as metadata, and reports whether the turn
// ends pending confirmation.
func (o *Orchestrator) finishTurn(sessionID, reply string) (*types.ChatResponse, error) {
	calls := o.parser.Parse(reply)

	var metadata map[string]any
	if len(calls) > 0 {
		metadata = map[string]any{"tool_calls": calls}
	}

	msg, err := o.manager.AddMessage(sessionID, types.RoleAssistant, reply, metadata)
	if err != nil {
		return nil, err
	}

	requiresConfirmation := false
	for _, call := range calls {
		if call.RequiresConfirmation {
			requiresConfirmation = true
			break
		}
	}

	return &types.ChatResponse{
		SessionID:            sessionID,
		Message:              msg,
		ToolCalls:            calls,
		RequiresConfirmation: requiresConfirmation,
	}, nil
}

// ExecuteTool validates and executes one tool call on behalf of a session
// and appends the tool-result turn on success.
func (o *Orchestrator) ExecuteTool(ctx context.Context, sessionID string, call types.ToolCall, confirmed bool) (*types.ToolResult, error) {
	if err := o.executor.Validate(call); err != nil {
		return nil, err
	}

	result := o.executor.Execute(ctx, sessionID, call, confirmed)

	if result.Success {
		content := fmt.Sprintf("Tool: %s\nResult: %v", call.ToolName, result.Output)
		if _, err := o.manager.AddMessage(sessionID, types.RoleTool, content,
			map[string]any{"tool_result": result}); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}

	return result, nil
}

// IsClientGone reports whether the error marks a mid-stream disconnect.
func IsClientGone(err error) bool {
	return errors.Is(err, errClientGone)
}

// inferenceContext builds the bounded {role, content} window and appends
// the tool prospectus to the system message so the model knows the
// current tool set each turn.
func (o *Orchestrator) inferenceContext(sessionID string) []types.ContextMessage {
	messages := o.manager.GetContext(sessionID, o.contextWindow)

	prospectus := o.executor.Registry().Prospectus()
	for i := range messages {
		if messages[i].Role == types.RoleSystem {
			messages[i].Content += "\n\n" + prospectus
			return messages
		}
	}

	// The window slid past the primer; reinsert a system message so the
	// model keeps its instructions.
	return append([]types.ContextMessage{{Role: types.RoleSystem, Content: systemPrimer + "\n\n" + prospectus}}, messages...)
}

func (o *Orchestrator) buildRequest(req types.ChatRequest, messages []types.ContextMessage) provider.ChatRequest {
	temperature := o.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	return provider.ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
