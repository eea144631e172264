package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/internal/metrics"
	"github.com/assistd-ai/assistd/pkg/types"
)

// OllamaClient talks to an Ollama instance through its OpenAI-compatible
// endpoint. Any other OpenAI-compatible backend works the same way.
type OllamaClient struct {
	api   *openai.Client
	model string
}

// NewOllamaClient creates a client for the given base URL (e.g.
// http://localhost:11434/v1) and default model.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the token
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &OllamaClient{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Initialize checks connectivity with a short retry window and resolves
// the default model against what the backend actually serves, falling
// back like the backend is expected to: strip an explicit tag first, then
// take the first available model. An unreachable backend is returned as
// ErrUnavailable so the caller can continue degraded.
func (c *OllamaClient) Initialize(ctx context.Context) error {
	var models []string

	op := func() error {
		var err error
		models, err = c.ListModels(ctx)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(models) == 0 {
		return fmt.Errorf("%w: no models available", ErrUnavailable)
	}

	if !contains(models, c.model) {
		fallback := strings.SplitN(c.model, ":", 2)[0]
		switch {
		case contains(models, fallback):
			logging.Warn().Str("model", c.model).Str("fallback", fallback).
				Msg("default model not found, falling back")
			c.model = fallback
		default:
			logging.Warn().Str("model", c.model).Str("fallback", models[0]).
				Msg("default model not found, using first available")
			c.model = models[0]
		}
	}

	logging.Info().Str("model", c.model).Strs("available", models).
		Msg("connected to inference backend")
	return nil
}

// Model returns the resolved default model.
func (c *OllamaClient) Model() string { return c.model }

// Chat runs a blocking completion.
func (c *OllamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		metrics.InferenceRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", wrapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.InferenceRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	metrics.InferenceRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return resp.Choices[0].Message.Content, nil
}

// ChatStream runs a streaming completion, forwarding fragments and
// returning the accumulated text.
func (c *OllamaClient) ChatStream(ctx context.Context, req ChatRequest, onChunk ChunkFunc) (string, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
	if err != nil {
		metrics.InferenceRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return "", wrapAPIError(err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.InferenceRequests.WithLabelValues(metrics.OutcomeError).Inc()
			return full.String(), wrapAPIError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	metrics.InferenceRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return full.String(), nil
}

// ListModels returns the model names the backend serves.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, wrapAPIError(err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// Healthy reports backend reachability with a short probe.
func (c *OllamaClient) Healthy(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.api.ListModels(probeCtx)
	return err == nil
}

func (c *OllamaClient) buildRequest(req ChatRequest, stream bool) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    normalizeRole(m.Role),
			Content: m.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

// normalizeRole maps internal roles onto the chat-completion wire roles.
// Tool-result turns are relayed as user content: the text grammar carries
// the tool output inline, there is no native tool role on this path.
func normalizeRole(role types.Role) string {
	switch role {
	case types.RoleSystem:
		return openai.ChatMessageRoleSystem
	case types.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// wrapAPIError folds transport and API errors into ErrUnavailable so the
// orchestrator maps them onto one taxonomy entry.
func wrapAPIError(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
