// Package provider abstracts the inference backend behind a small
// chat-completion interface.
package provider

import (
	"context"
	"errors"

	"github.com/assistd-ai/assistd/pkg/types"
)

// ErrUnavailable indicates the backend is unreachable or returned an
// error status.
var ErrUnavailable = errors.New("inference backend unavailable")

// ChatRequest is one chat-completion call.
type ChatRequest struct {
	Model       string
	Messages    []types.ContextMessage
	Temperature float64
	MaxTokens   int
}

// ChunkFunc receives one incremental text fragment of a streamed reply.
type ChunkFunc func(chunk string)

// Client is the inference backend boundary. Implementations must be safe
// for concurrent use.
type Client interface {
	// Chat runs a blocking completion and returns the full reply text.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// ChatStream runs a streaming completion, forwarding each fragment to
	// onChunk as it arrives, and returns the accumulated full text once
	// the stream ends.
	ChatStream(ctx context.Context, req ChatRequest, onChunk ChunkFunc) (string, error)

	// ListModels returns the model names the backend serves.
	ListModels(ctx context.Context) ([]string, error)

	// Healthy reports current backend reachability.
	Healthy(ctx context.Context) bool

	// Model returns the default model the client resolved at startup.
	Model() string
}
