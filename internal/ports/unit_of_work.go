package ports

import "context"

// Tx is an adapter-owned transaction handle, a *gorm.DB for the SQL stores.
type Tx any

// UnitOfWork runs fn atomically. A non-nil error from fn rolls back every
// write made through the context it receives.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the handle stored by WithTxContext, or nil.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
