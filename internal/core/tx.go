package core

import "context"

// TxRunner wraps a function in a single store transaction. Every write issued
// through the repos inside fn commits together or rolls back together; no
// partial state is observable from outside the transaction. Implementations
// carry the transaction in the context.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
