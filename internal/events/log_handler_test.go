package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/phrazzld/tasktracker/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHandler(t *testing.T) {
	logger, handler := testutils.NewTestLogger()
	h := events.NewLogHandler(logger)

	event := events.NewTaskEvent(events.TaskClosed, 42, 7, time.Now())
	require.NoError(t, h.HandleEvent(context.Background(), event))

	entries := handler.EntriesWithMessage("task event")
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "task.closed", entries[0]["event_type"])
	assert.Equal(t, int64(42), entries[0]["task_id"])
	assert.Equal(t, int64(7), entries[0]["user_id"])
	assert.Equal(t, "audit", entries[0]["component"])
}
