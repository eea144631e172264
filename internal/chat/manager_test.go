package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/pkg/types"
)

func newTestManager(timeout, sweep time.Duration) *Manager {
	return NewManager(NewStore(), nil, timeout, sweep)
}

func TestManager_CreateSessionGeneratesID(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)

	session := m.CreateSession("")
	require.NotEmpty(t, session.ID)
	require.NotEmpty(t, session.ConversationID)
	assert.True(t, session.Active)
	assert.Equal(t, 0, session.MessageCount)

	got, ok := m.GetSession(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)
}

func TestManager_CreateSessionHonorsGivenID(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)

	session := m.CreateSession("my-session")
	assert.Equal(t, "my-session", session.ID)
}

func TestManager_CreateSessionReplacesColliding(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)

	first := m.CreateSession("my-session")
	_, err := m.AddMessage("my-session", types.RoleUser, "hello", nil)
	require.NoError(t, err)

	second := m.CreateSession("my-session")
	assert.NotEqual(t, first.ConversationID, second.ConversationID)

	// The replaced conversation must not linger in the store.
	stats := m.Stats()
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 1, stats.TotalConversations)
	assert.Equal(t, 1, stats.TotalMessages) // fresh primer only

	conv, ok := m.GetConversation("my-session")
	require.True(t, ok)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, types.RoleSystem, conv.Messages[0].Role)
}

func TestManager_AddMessageCountsAndStores(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	session := m.CreateSession("")

	msg, err := m.AddMessage(session.ID, types.RoleUser, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, msg.Role)
	assert.NotEmpty(t, msg.ID)

	got, ok := m.GetSession(session.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.MessageCount)

	conv, ok := m.GetConversation(session.ID)
	require.True(t, ok)
	require.Len(t, conv.Messages, 2) // primer + user
	assert.Equal(t, "hello", conv.Messages[1].Content)
}

func TestManager_AddMessageUnknownSession(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)

	_, err := m.AddMessage("nope", types.RoleUser, "hello", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_EndSessionRemovesEverything(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	session := m.CreateSession("")

	m.EndSession(session.ID)

	_, ok := m.GetSession(session.ID)
	assert.False(t, ok)

	_, err := m.AddMessage(session.ID, types.RoleUser, "late", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 0, m.Stats().TotalConversations)
}

func TestManager_EndSessionIdempotent(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	session := m.CreateSession("")

	m.EndSession(session.ID)
	m.EndSession(session.ID)
	m.EndSession("never-existed")
}

func TestManager_GetContextWindow(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	session := m.CreateSession("")

	for i := 0; i < 6; i++ {
		_, err := m.AddMessage(session.ID, types.RoleUser, "msg", nil)
		require.NoError(t, err)
	}

	ctx := m.GetContext(session.ID, 4)
	assert.Len(t, ctx, 4)

	assert.Nil(t, m.GetContext("nope", 4))
}

func TestManager_SweepExpiresIdleSessions(t *testing.T) {
	m := newTestManager(50*time.Millisecond, 10*time.Millisecond)
	session := m.CreateSession("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	require.Eventually(t, func() bool {
		_, ok := m.GetSession(session.ID)
		return !ok
	}, time.Second, 5*time.Millisecond, "idle session should be swept")
}

func TestManager_SweepSparesActiveSessions(t *testing.T) {
	m := newTestManager(time.Hour, 10*time.Millisecond)
	session := m.CreateSession("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	time.Sleep(50 * time.Millisecond)

	_, ok := m.GetSession(session.ID)
	assert.True(t, ok)
}

func TestManager_ExpiryPublishesEvent(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()

	m := NewManager(NewStore(), bus, 20*time.Millisecond, 10*time.Millisecond)
	session := m.CreateSession("")

	expired := make(chan event.Event, 1)
	unsub := bus.Subscribe(event.SessionExpired, func(e event.Event) {
		select {
		case expired <- e:
		default:
		}
	})
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	select {
	case e := <-expired:
		data, ok := e.Data.(event.SessionExpiredData)
		require.True(t, ok)
		assert.Equal(t, session.ID, data.SessionID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for expiry event")
	}
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	m.Stop()
}

func TestManager_Stats(t *testing.T) {
	m := newTestManager(time.Hour, time.Hour)
	a := m.CreateSession("")
	m.CreateSession("")

	_, err := m.AddMessage(a.ID, types.RoleUser, "hi", nil)
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 2, stats.TotalConversations)
	assert.Equal(t, 3, stats.TotalMessages) // two primers + one user message
}
