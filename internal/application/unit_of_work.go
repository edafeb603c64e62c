package application

import "context"

// TxRunner executes a function inside one atomic unit of work. Every
// repository call made with the callback's context joins the same
// transaction; if the callback returns an error nothing is committed.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
