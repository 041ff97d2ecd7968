package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs []published
	err  error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestPublisher_HandleEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("publishes json on typed subject", func(t *testing.T) {
		conn := &fakeConn{}
		p := NewPublisher(conn, "audit", nil)
		event := events.NewTaskEvent(events.TaskClosed, 12, 3, at)

		require.NoError(t, p.HandleEvent(context.Background(), event))
		require.Len(t, conn.msgs, 1)
		assert.Equal(t, "audit.task.closed", conn.msgs[0].subject)

		var decoded events.TaskEvent
		require.NoError(t, json.Unmarshal(conn.msgs[0].data, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, int64(12), decoded.TaskID)
		assert.Equal(t, int64(3), decoded.ActorID)
		assert.True(t, decoded.OccurredAt.Equal(at))
	})

	t.Run("default prefix", func(t *testing.T) {
		p := NewPublisher(&fakeConn{}, "", nil)
		assert.Equal(t, "tasktracker.task.created", p.Subject(events.TaskCreated))
	})

	t.Run("publish error is wrapped", func(t *testing.T) {
		boom := errors.New("connection closed")
		p := NewPublisher(&fakeConn{err: boom}, "x", nil)
		err := p.HandleEvent(context.Background(), events.NewTaskEvent(events.TaskDeleted, 1, 1, at))
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "x.task.deleted")
	})

	t.Run("cancelled context skips publish", func(t *testing.T) {
		conn := &fakeConn{}
		p := NewPublisher(conn, "x", nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.HandleEvent(ctx, events.NewTaskEvent(events.TaskUpdated, 1, 1, at))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, conn.msgs)
	})
}

func TestNewPublisher_NilConnPanics(t *testing.T) {
	assert.Panics(t, func() { NewPublisher(nil, "", nil) })
}

func TestPublisher_BehindAsyncDispatcher(t *testing.T) {
	conn := &fakeConn{}
	d := events.NewAsyncDispatcher(NewPublisher(conn, "audit", nil),
		events.DispatcherConfig{WorkerCount: 1, QueueSize: 8}, nil)
	d.Start()

	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(d)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, emitter.EmitEvent(context.Background(), events.NewTaskEvent(events.TaskCreated, 1, 2, at)))
	require.NoError(t, emitter.EmitEvent(context.Background(), events.NewTaskEvent(events.TaskDeleted, 1, 2, at)))
	require.NoError(t, d.Stop(context.Background()))

	require.Len(t, conn.msgs, 2)
	assert.Equal(t, "audit.task.created", conn.msgs[0].subject)
	assert.Equal(t, "audit.task.deleted", conn.msgs[1].subject)
}
