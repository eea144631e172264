package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/internal/logging"
	"github.com/assistd-ai/assistd/internal/metrics"
	"github.com/assistd-ai/assistd/pkg/types"
)

// Manager coordinates session lifecycle: creation, lookup, expiry, message
// appending, and context-window extraction. All state is memory-resident;
// a session never outlives the process.
type Manager struct {
	store *Store
	bus   *event.Bus

	timeout       time.Duration
	sweepInterval time.Duration

	mu       sync.RWMutex
	sessions map[string]*sessionState

	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// sessionState wraps a session with its own lock so activity updates do
// not contend on the session table.
type sessionState struct {
	mu   sync.Mutex
	info types.Session
}

func (s *sessionState) touch() {
	s.mu.Lock()
	s.info.LastActivity = time.Now()
	s.mu.Unlock()
}

func (s *sessionState) recordMessage() {
	s.mu.Lock()
	s.info.MessageCount++
	s.info.LastActivity = time.Now()
	s.mu.Unlock()
}

func (s *sessionState) snapshot() types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// NewManager creates a session manager. bus may be nil.
func NewManager(store *Store, bus *event.Bus, timeout, sweepInterval time.Duration) *Manager {
	if timeout <= 0 {
		timeout = time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	return &Manager{
		store:         store,
		bus:           bus,
		timeout:       timeout,
		sweepInterval: sweepInterval,
		sessions:      make(map[string]*sessionState),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// CreateSession creates a new session with a fresh primed conversation.
// id may be empty, in which case one is generated. Creating over an
// existing id replaces the session and discards its old conversation.
func (m *Manager) CreateSession(id string) *types.Session {
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now()
	state := &sessionState{
		info: types.Session{
			ID:             id,
			ConversationID: m.store.Create(systemPrimer),
			CreatedAt:      now,
			LastActivity:   now,
			Active:         true,
		},
	}

	m.mu.Lock()
	if old, ok := m.sessions[id]; ok {
		// Replacing an id must not leak the previous conversation or
		// double-count the session.
		old.mu.Lock()
		convID := old.info.ConversationID
		old.mu.Unlock()
		m.store.Remove(convID)
		metrics.ActiveSessions.Dec()
	}
	m.sessions[id] = state
	m.mu.Unlock()

	metrics.ActiveSessions.Inc()
	logging.Info().Str("session", id).Msg("created session")

	if m.bus != nil {
		info := state.snapshot()
		m.bus.Publish(event.Event{
			Type: event.SessionCreated,
			Data: event.SessionCreatedData{Info: &info},
		})
	}

	info := state.snapshot()
	return &info
}

// GetSession looks up a session by id. A hit refreshes last-activity:
// touching a session counts as activity, even read-only inspection.
func (m *Manager) GetSession(id string) (*types.Session, bool) {
	state, ok := m.lookup(id)
	if !ok {
		return nil, false
	}

	state.touch()
	info := state.snapshot()
	return &info, true
}

// EndSession marks the session inactive and removes it together with its
// conversation. Ending an absent session is a no-op.
func (m *Manager) EndSession(id string) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	state.mu.Lock()
	state.info.Active = false
	convID := state.info.ConversationID
	state.mu.Unlock()

	m.store.Remove(convID)
	metrics.ActiveSessions.Dec()
	logging.Info().Str("session", id).Msg("ended session")

	if m.bus != nil {
		m.bus.Publish(event.Event{
			Type: event.SessionEnded,
			Data: event.SessionEndedData{SessionID: id},
		})
	}
}

// AddMessage appends a message to the session's conversation. The append
// is atomic per conversation: concurrent appends to the same conversation
// serialize in some order and never interleave.
func (m *Manager) AddMessage(sessionID string, role types.Role, content string, metadata map[string]any) (*types.Message, error) {
	state, ok := m.lookup(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	msg := types.Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}

	convID := state.snapshot().ConversationID
	if err := m.store.Append(convID, msg); err != nil {
		// The sweep removed the session between lookup and append; the
		// turn is terminal for the caller.
		return nil, ErrSessionNotFound
	}

	state.recordMessage()
	metrics.MessagesAppended.WithLabelValues(string(role)).Inc()

	logging.Audit(sessionID, "message_added", "conversation:"+convID).
		Str("role", string(role)).
		Int("length", len(content)).
		Msg("message added")

	if m.bus != nil {
		m.bus.Publish(event.Event{
			Type: event.MessageCreated,
			Data: event.MessageCreatedData{SessionID: sessionID, Info: &msg},
		})
	}

	return &msg, nil
}

// GetContext returns the most recent maxMessages entries of the session's
// conversation, oldest first, or nil for an unknown session.
func (m *Manager) GetContext(sessionID string, maxMessages int) []types.ContextMessage {
	state, ok := m.lookup(sessionID)
	if !ok {
		return nil
	}

	state.touch()
	return m.store.Context(state.snapshot().ConversationID, maxMessages)
}

// GetConversation returns a snapshot of the session's conversation.
func (m *Manager) GetConversation(sessionID string) (*types.Conversation, bool) {
	state, ok := m.lookup(sessionID)
	if !ok {
		return nil, false
	}
	return m.store.Get(state.snapshot().ConversationID)
}

// Stats summarizes live chat state.
func (m *Manager) Stats() types.ChatStats {
	m.mu.RLock()
	active := len(m.sessions)
	m.mu.RUnlock()

	return types.ChatStats{
		ActiveSessions:     active,
		TotalConversations: m.store.Count(),
		TotalMessages:      m.store.TotalMessages(),
	}
}

// Start launches the background expiry sweep. The sweep is the only
// component allowed to remove sessions without an explicit client request.
func (m *Manager) Start(ctx context.Context) {
	m.started = true
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit. Stopping a
// manager that was never started is a no-op.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.started {
		<-m.done
	}
}

// sweep removes every session idle past the timeout. Failures on one
// session are isolated so the loop always finishes the pass.
func (m *Manager) sweep() {
	now := time.Now()

	m.mu.RLock()
	candidates := make(map[string]*sessionState, len(m.sessions))
	for id, state := range m.sessions {
		candidates[id] = state
	}
	m.mu.RUnlock()

	for id, state := range candidates {
		m.expireIfIdle(id, state, now)
	}
}

func (m *Manager) expireIfIdle(id string, state *sessionState, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Str("session", id).
				Msg("session sweep iteration failed")
		}
	}()

	info := state.snapshot()
	idle := info.IdleFor(now)
	if idle <= m.timeout {
		return
	}

	m.EndSession(id)
	metrics.SessionsExpired.Inc()
	logging.Info().Str("session", id).Dur("idle", idle).Msg("cleaned up expired session")

	if m.bus != nil {
		m.bus.Publish(event.Event{
			Type: event.SessionExpired,
			Data: event.SessionExpiredData{SessionID: id, IdleFor: idle.String()},
		})
	}
}

func (m *Manager) lookup(id string) (*sessionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[id]
	return state, ok
}
