// Package db provide helpers for running repository code in sql connection
// or transaction.
package db

//
// db.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"database/sql"
	"errors"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

// Database is sql database that provide connections.
type Database interface {
	GetConnection(ctx context.Context) (*sqlx.Conn, error)
	CloseConnection(ctx context.Context, conn *sqlx.Conn) error
}

//nolint:gochecknoglobals
var queryDuration *prometheus.HistogramVec

// RegisterMetrics register database stats collector and optionally query duration histogram.
func RegisterMetrics(reg prometheus.Registerer, sqldb *sql.DB, name string, queryTime bool) {
	if reg == nil || sqldb == nil {
		return
	}

	reg.MustRegister(collectors.NewDBStatsCollector(sqldb, name))

	if queryTime {
		queryDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_query_duration_seconds",
				Help:    "Tracks the latencies for database query.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.2, 0.5, 1, 2, 5},
			},
			[]string{"caller"},
		)

		reg.MustRegister(queryDuration)
	}
}

func observeQueryDuration(start time.Time) {
	if queryDuration == nil {
		return
	}

	const skipFrames = 3

	rpc := make([]uintptr, 1)
	if n := runtime.Callers(skipFrames, rpc); n < 1 {
		return
	}

	frame, _ := runtime.CallersFrames(rpc).Next()
	if frame.PC == 0 {
		return
	}

	queryDuration.WithLabelValues(frame.Function).Observe(time.Since(start).Seconds())
}

//------------------------------------------------------------------------------

// InConnectionR run `fun` with connection in context. When context already
// has connection or transaction, it is reused.
func InConnectionR[T any](ctx context.Context, r Database,
	fun func(context.Context) (T, error),
) (T, error) {
	if _, ok := Ctx(ctx); ok {
		return fun(ctx)
	}

	start := time.Now()
	defer observeQueryDuration(start)

	conn, err := r.GetConnection(ctx)
	if err != nil {
		return *new(T), err
	}

	defer closeConnection(ctx, r, conn)

	return fun(WithCtx(ctx, conn))
}

// InTransaction run `fun` in db transaction; rollback on error.
func InTransaction(ctx context.Context, r Database, fun func(context.Context) error) error {
	_, err := InTransactionR(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fun(ctx)
	})

	return err
}

// InTransactionR run `fun` in db transaction; return `fun` result and error.
func InTransactionR[T any](ctx context.Context, r Database,
	fun func(context.Context) (T, error),
) (T, error) {
	if _, ok := Ctx(ctx); ok {
		return fun(ctx)
	}

	start := time.Now()
	defer observeQueryDuration(start)

	conn, err := r.GetConnection(ctx)
	if err != nil {
		return *new(T), err
	}

	defer closeConnection(ctx, r, conn)

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return *new(T), aerr.ApplyFor(aerr.ErrDatabase, err, "begin tx failed")
	}

	res, err := fun(WithCtx(ctx, tx))
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			merr := errors.Join(err, rerr)

			return res, aerr.ApplyFor(aerr.ErrDatabase, merr, "execute func in trans and rollback error")
		}

		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, aerr.ApplyFor(aerr.ErrDatabase, err, "commit tx failed")
	}

	return res, nil
}

func closeConnection(ctx context.Context, r Database, conn *sqlx.Conn) {
	if err := r.CloseConnection(ctx, conn); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("db: close connection error=%q", err)
	}
}
