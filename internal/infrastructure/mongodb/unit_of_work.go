package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxClient is the transaction surface of the shared mongo client. Both the
// plain client and its circuit breaker wrapper satisfy it.
type TxClient interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error
}

// UnitOfWork adapts the shared mongo client's transaction helper to the
// application.TxRunner interface. The session context flows through the
// plain context.Context parameter, so every repository call inside fn
// joins the transaction.
type UnitOfWork struct {
	client TxClient
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(client TxClient) *UnitOfWork {
	return &UnitOfWork{client: client}
}

func (u *UnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
