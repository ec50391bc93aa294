package sse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelpost/rebelpost-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager(testLogger())

	client, err := m.Connect()
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Disconnecting twice is a no-op.
	m.Disconnect(client.ID)
}

func TestManager_BroadcastToAllClients(t *testing.T) {
	m := NewManager(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	c1, err := m.Connect()
	require.NoError(t, err)
	c2, err := m.Connect()
	require.NoError(t, err)

	post := &domain.Post{ID: "post-1", AuthorKey: "user-a", Text: "hello"}
	m.Emit(NewPostCreatedEvent(post))

	for _, c := range []*Client{c1, c2} {
		select {
		case event := <-c.EventChan:
			assert.Equal(t, EventPostCreated, event.Type)
			data, ok := event.Data.(PostCreatedEventData)
			require.True(t, ok)
			assert.Equal(t, "post-1", data.Post.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestManager_EmitAfterShutdownDropsSilently(t *testing.T) {
	m := NewManager(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	cancel()
	require.NoError(t, m.Shutdown(shutdownCtx))

	// Must not panic on the closed channel.
	m.Emit(NewVoteCastEvent("post-1", "rebellion", domain.VoteUp))
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m := NewManager(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	client, err := m.Connect()
	require.NoError(t, err)

	cancel()

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client was not closed on manager stop")
	}
	assert.Equal(t, 0, m.ClientCount())
}

func TestManager_ClientsIterator(t *testing.T) {
	m := NewManager(testLogger())

	_, err := m.Connect()
	require.NoError(t, err)
	_, err = m.Connect()
	require.NoError(t, err)

	seen := 0
	for range m.Clients() {
		seen++
	}
	assert.Equal(t, 2, seen)
}
