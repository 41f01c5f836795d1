package db

//
// dbcontext.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ------------------------------------------------------------------------------

// Interface is implemented by *sqlx.Conn and *sqlx.Tx; repositories use it
// for all queries.
type Interface interface {
	sqlx.QueryerContext
	sqlx.PreparerContext
	sqlx.ExecerContext

	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// ------------------------------------------------------------------------------

type ctxDBKey struct{}

// WithCtx bind connection or transaction to context. Context that already
// carry one is returned unchanged, so nested helpers share the outer
// transaction.
func WithCtx(ctx context.Context, dbctx Interface) context.Context {
	if _, ok := Ctx(ctx); ok {
		return ctx
	}

	return context.WithValue(ctx, ctxDBKey{}, dbctx)
}

// Ctx return connection or transaction bound to context.
func Ctx(ctx context.Context) (Interface, bool) { //nolint:ireturn
	value, ok := ctx.Value(ctxDBKey{}).(Interface)

	return value, ok && value != nil
}

// MustCtx is Ctx that panic when context has no database access object;
// repositories call it only inside InConnectionR/InTransaction.
func MustCtx(ctx context.Context) Interface { //nolint:ireturn
	value, ok := Ctx(ctx)
	if !ok {
		panic("db: no connection in context")
	}

	return value
}
