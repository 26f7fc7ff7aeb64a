package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/insurance4you/agency/internal/core"
)

// TxRunner implements core.TxRunner over mongo sessions. The session rides
// the context, so repo calls made with the callback's context join the
// transaction. Requires a replica set (single-node is fine for dev).
type TxRunner struct {
	client *mongodrv.Client
}

func NewTxRunner(client *mongodrv.Client) *TxRunner {
	return &TxRunner{client: client}
}

func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the outer session.
	if mongodrv.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", core.ErrPersistence, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongodrv.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// mapErr translates driver errors into domain error kinds. notFound is
// returned for ErrNoDocuments; duplicate-key writes become conflict.
func mapErr(err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongodrv.ErrNoDocuments) {
		return notFound
	}
	if conflict != nil && mongodrv.IsDuplicateKeyError(err) {
		return conflict
	}
	return fmt.Errorf("%w: %v", core.ErrPersistence, err)
}

func opCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
