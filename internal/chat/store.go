// Package chat owns conversation state, session lifecycle, and the
// per-turn orchestration flow.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/assistd-ai/assistd/pkg/types"
)

var (
	// ErrSessionNotFound indicates an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrConversationNotFound indicates a conversation missing from the
	// store. Sessions and conversations are created and removed in
	// lockstep, so callers treat this as an internal consistency fault.
	ErrConversationNotFound = errors.New("conversation not found")
)

// Store owns conversation histories. Appends to one conversation are
// serialized by a per-conversation lock; different conversations proceed
// fully in parallel.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversationState
}

type conversationState struct {
	mu      sync.Mutex
	conv    types.Conversation
	removed bool
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{conversations: make(map[string]*conversationState)}
}

// Create creates a conversation seeded with the given system primer and
// returns its id.
func (s *Store) Create(primer string) string {
	now := time.Now()
	state := &conversationState{
		conv: types.Conversation{
			ID:        ulid.Make().String(),
			CreatedAt: now,
			Messages: []types.Message{{
				ID:        ulid.Make().String(),
				Role:      types.RoleSystem,
				Content:   primer,
				Timestamp: now,
			}},
		},
	}

	s.mu.Lock()
	s.conversations[state.conv.ID] = state
	s.mu.Unlock()

	return state.conv.ID
}

// Append appends a message under the conversation's lock. Appending to a
// removed conversation fails, which is how a concurrent expiry sweep is
// surfaced to in-flight turns.
func (s *Store) Append(conversationID string, msg types.Message) error {
	state, ok := s.lookup(conversationID)
	if !ok {
		return ErrConversationNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.removed {
		return ErrConversationNotFound
	}
	state.conv.Messages = append(state.conv.Messages, msg)
	return nil
}

// Remove marks the conversation removed and drops it from the live table.
// The removed flag is set under the conversation lock so it cannot race an
// in-flight append.
func (s *Store) Remove(conversationID string) {
	state, ok := s.lookup(conversationID)
	if !ok {
		return
	}

	state.mu.Lock()
	state.removed = true
	state.mu.Unlock()

	s.mu.Lock()
	delete(s.conversations, conversationID)
	s.mu.Unlock()
}

// Get returns a snapshot copy of the conversation.
func (s *Store) Get(conversationID string) (*types.Conversation, bool) {
	state, ok := s.lookup(conversationID)
	if !ok {
		return nil, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	conv := state.conv
	conv.Messages = append([]types.Message(nil), state.conv.Messages...)
	return &conv, true
}

// Context returns the most recent max messages as a {role, content}
// projection, oldest first. The result is always a suffix of the history.
func (s *Store) Context(conversationID string, max int) []types.ContextMessage {
	state, ok := s.lookup(conversationID)
	if !ok {
		return nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	msgs := state.conv.Messages
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}

	out := make([]types.ContextMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, types.ContextMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Len returns the number of messages in a conversation.
func (s *Store) Len(conversationID string) int {
	state, ok := s.lookup(conversationID)
	if !ok {
		return 0
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return len(state.conv.Messages)
}

// Count returns the number of live conversations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// TotalMessages returns the message count across all live conversations.
func (s *Store) TotalMessages() int {
	s.mu.RLock()
	states := make([]*conversationState, 0, len(s.conversations))
	for _, st := range s.conversations {
		states = append(states, st)
	}
	s.mu.RUnlock()

	total := 0
	for _, st := range states {
		st.mu.Lock()
		total += len(st.conv.Messages)
		st.mu.Unlock()
	}
	return total
}

func (s *Store) lookup(conversationID string) (*conversationState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.conversations[conversationID]
	return state, ok
}
