package repository

import (
    "context"
    "database/sql"
)

// Store bundles all item and reservation persistence behind one type.
// Methods that must run under a row lock are only safe inside WithTx;
// the transaction travels in the context so the same method works both
// inside and outside a unit of work.
type Store struct {
    db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for callers that manage their own
// transactions (the admin reset does).
func (s *Store) DB() *sql.DB { return s.db }

type txKey struct{}

// WithTx runs fn inside a single database transaction.  The
// transaction is committed when fn returns nil and rolled back
// otherwise.  Nested calls reuse the transaction already in the
// context, so an engine operation composes repository methods into
// one atomic unit.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
    if txFrom(ctx) != nil {
        return fn(ctx)
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
        _ = tx.Rollback()
        return err
    }
    return tx.Commit()
}

func txFrom(ctx context.Context) *sql.Tx {
    tx, _ := ctx.Value(txKey{}).(*sql.Tx)
    return tx
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// q returns the transaction from the context when present, falling
// back to the pooled handle for plain reads.
func (s *Store) q(ctx context.Context) querier {
    if tx := txFrom(ctx); tx != nil {
        return tx
    }
    return s.db
}
