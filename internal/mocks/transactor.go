package mocks

import (
	"context"

	"github.com/phrazzld/tasktracker/internal/store"
)

// Transactor runs fn directly against fixed stores without a real
// transaction. Calls counts WithinTx invocations.
type Transactor struct {
	Stores store.Stores
	Calls  int
}

var _ store.Transactor = (*Transactor)(nil)

// NewTransactor returns a Transactor handing out the given stores.
func NewTransactor(users store.UserStore, tasks store.TaskStore) *Transactor {
	return &Transactor{Stores: store.Stores{Users: users, Tasks: tasks}}
}

// WithinTx implements store.Transactor.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	t.Calls++
	return fn(ctx, t.Stores)
}
