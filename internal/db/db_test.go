package db

//
// db_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gitlab.com/kabes/go-chat/internal/assert"
)

func TestInTransactionRollback(t *testing.T) {
	ctx, database := prepareTests(t)

	errAbort := errors.New("abort")

	err := InTransaction(ctx, database, func(ctx context.Context) error {
		_, err := MustCtx(ctx).ExecContext(ctx, "INSERT INTO rooms (name) VALUES ('kaist')")
		assert.NoErr(t, err)

		return errAbort
	})
	assert.ErrSpec(t, err, errAbort)
	assert.Equal(t, countRooms(ctx, t, database), 0)

	err = InTransaction(ctx, database, func(ctx context.Context) error {
		_, err := MustCtx(ctx).ExecContext(ctx, "INSERT INTO rooms (name) VALUES ('kaist')")

		return err
	})
	assert.NoErr(t, err)
	assert.Equal(t, countRooms(ctx, t, database), 1)
}

func TestInConnectionReuseContext(t *testing.T) {
	ctx, database := prepareTests(t)

	err := InTransaction(ctx, database, func(ctx context.Context) error {
		outer := MustCtx(ctx)

		_, err := InConnectionR(ctx, database, func(ctx context.Context) (any, error) {
			assert.True(t, MustCtx(ctx) == outer)

			return nil, nil //nolint:nilnil
		})

		return err
	})
	assert.NoErr(t, err)

	_, ok := Ctx(ctx)
	assert.True(t, !ok)
}

func TestSQLDatabaseNotOpened(t *testing.T) {
	database := NewSQLDatabase("test", "sqlite3", ":memory:", goose.DialectSQLite3, PoolConf{MaxOpen: 1})

	assert.Err(t, database.HealthCheck(context.Background()))
	assert.Err(t, database.Exec(context.Background(), "SELECT 1"))
	assert.NoErr(t, database.Close(context.Background()))
	assert.True(t, database.DB() == nil)
}

func prepareTests(t *testing.T) (context.Context, *SQLDatabase) {
	t.Helper()

	ctx := context.Background()
	hooks := 0

	database := NewSQLDatabase("test", "sqlite3", ":memory:", goose.DialectSQLite3, PoolConf{MaxOpen: 1, MaxIdle: 1})
	database.OnOpen = func(_ context.Context, _ sqlx.ExecerContext) error {
		hooks++

		return nil
	}

	assert.NoErr(t, database.Open(ctx))
	assert.NoErr(t, database.Exec(ctx, "CREATE TABLE rooms (name TEXT PRIMARY KEY)"))
	assert.True(t, hooks > 0)

	t.Cleanup(func() {
		_ = database.Close(context.Background())
	})

	return ctx, database
}

func countRooms(ctx context.Context, t *testing.T, database *SQLDatabase) int {
	t.Helper()

	cnt, err := InConnectionR(ctx, database, func(ctx context.Context) (int, error) {
		var cnt int

		err := MustCtx(ctx).GetContext(ctx, &cnt, "SELECT count(*) FROM rooms")

		return cnt, err
	})
	assert.NoErr(t, err)

	return cnt
}
