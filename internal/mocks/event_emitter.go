package mocks

import (
	"context"

	"github.com/phrazzld/tasktracker/internal/events"
	"github.com/stretchr/testify/mock"
)

// EventEmitter is a mock of events.EventEmitter.
type EventEmitter struct {
	mock.Mock
}

var _ events.EventEmitter = (*EventEmitter)(nil)

// EmitEvent is a mock implementation of events.EventEmitter.EmitEvent
func (m *EventEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	return m.Called(ctx, event).Error(0)
}
