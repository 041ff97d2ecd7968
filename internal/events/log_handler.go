package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasktracker/internal/platform/logger"
)

// LogHandler writes one structured audit log line per event.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(l *slog.Logger) *LogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LogHandler{logger: l.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger)
	log.Info("task event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.Int64("task_id", event.TaskID),
		slog.Int64("user_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt))
	return nil
}
