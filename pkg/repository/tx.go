package repository

import (
	"context"

	"github.com/stephenafamo/bob"
)

// the contract within this package is:
// a transaction puts its executor into the context, every store operation
// first looks for an executor there and falls back to the database otherwise

type executorKey struct{}

func withExecutor(ctx context.Context, e bob.Executor) context.Context {
	return context.WithValue(ctx, executorKey{}, e)
}

func executorFrom(ctx context.Context) bob.Executor {
	if ctx == nil {
		return nil
	}
	if e, ok := ctx.Value(executorKey{}).(bob.Executor); ok {
		return e
	}
	return nil
}

// InTx reports whether ctx carries a store transaction
func InTx(ctx context.Context) bool {
	return executorFrom(ctx) != nil
}

// RunInTx runs fn within a transaction. Store calls using the passed
// context take part in it. Nested calls reuse the outer transaction.
//
//nolint:whitespace // editor/linter issue
func (s *Store) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if InTx(ctx) {
		return fn(ctx)
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, e bob.Executor) error {
		return fn(withExecutor(ctx, e))
	})
}

func (s *Store) getExecutor(ctx context.Context) bob.Executor {
	if e := executorFrom(ctx); e != nil {
		return e
	}
	return s.db
}
