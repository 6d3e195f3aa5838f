package db

import (
	"context"
	"database/sql"
)

type txKey struct{}

// TxProvider is implemented by SQL-backed repositories.
type TxProvider interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
}

// WithTx makes repository calls made with the returned context join tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) *sql.Tx {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// RunInTx calls fn with a context carrying a transaction. An outer
// transaction already in ctx is reused and left for its owner to finish;
// otherwise a new one is committed when fn succeeds.
func RunInTx(ctx context.Context, p TxProvider, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := p.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
