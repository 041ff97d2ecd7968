package store

import "context"

// Stores groups the stores bound to one unit of work.
type Stores struct {
	Users UserStore
	Tasks TaskStore
}

// Transactor runs a function against transaction-bound stores.
//
// The function must only use the Stores it is given. It is committed when fn
// returns nil and rolled back when fn returns an error or panics.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
