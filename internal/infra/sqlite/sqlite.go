// Package sqlite implement chat repository in sqlite database.
package sqlite

//
// sqlite.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"embed"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/db"
)

//go:embed "migrations/*.sql"
var embedMigrations embed.FS

//nolint:gochecknoglobals
var (
	filePool = db.PoolConf{
		MaxIdleTime: 30 * time.Second,
		MaxLifetime: 60 * time.Second,
		MaxIdle:     1,
		MaxOpen:     10,
	}
	// every connection to in-memory database open new, empty database
	memoryPool = db.PoolConf{MaxOpen: 1, MaxIdle: 1}
)

func newDatabase(connstr string) (*db.SQLDatabase, error) {
	connstr, err := prepareSqliteConnstr(connstr)
	if err != nil {
		return nil, aerr.Wrapf(err, "invalid store.connstr")
	}

	pool := filePool
	if strings.HasPrefix(connstr, ":memory:") {
		pool = memoryPool
	}

	database := db.NewSQLDatabase("sqlite", "sqlite3", connstr, goose.DialectSQLite3, pool)
	database.OnOpen = onOpenConn
	database.OnClose = onCloseConn

	return database, nil
}

func onOpenConn(ctx context.Context, conn sqlx.ExecerContext) error {
	if _, err := conn.ExecContext(ctx, "PRAGMA temp_store = MEMORY; PRAGMA busy_timeout = 1000;"); err != nil {
		return aerr.Wrap(err)
	}

	return nil
}

func onCloseConn(ctx context.Context, conn sqlx.ExecerContext) error {
	if _, err := conn.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return aerr.Wrap(err)
	}

	return nil
}

// prepareSqliteConnstr validate connection string and set defaults: foreign
// keys on, WAL journal and normal synchronous mode.
func prepareSqliteConnstr(connstr string) (string, error) {
	switch connstr {
	case "":
		return "", aerr.ErrInvalidConf.WithUserMsg("invalid (empty) database connection string")
	case ":memory:":
		return ":memory:?_fk=ON", nil
	}

	parsed, err := url.Parse(connstr)
	if err != nil {
		return "", aerr.ApplyFor(aerr.ErrInvalidConf, err, "", "failed to parse database connections string")
	}

	if parsed.Path == "" {
		return "", aerr.ErrInvalidConf.WithUserMsg("invalid database connection string - missing path")
	}

	query := parsed.Query()
	if !query.Has("_fk") && !query.Has("__foreign_keys") {
		query.Set("_fk", "ON")
	}

	for key, value := range map[string]string{"_journal_mode": "WAL", "_synchronous": "NORMAL"} {
		if !query.Has(key) {
			query.Set(key, value)
		}
	}

	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
