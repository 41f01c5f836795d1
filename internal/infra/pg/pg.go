// Package pg implement chat repository in PostgreSQL database.
package pg

//
// pg.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"embed"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/db"
)

//go:embed "migrations/*.sql"
var embedMigrations embed.FS

//nolint:gochecknoglobals
var poolConf = db.PoolConf{
	MaxIdleTime: 300 * time.Second,
	MaxLifetime: 600 * time.Second,
	MaxIdle:     1,
	MaxOpen:     10,
}

func newDatabase(connstr string) (*db.SQLDatabase, error) {
	if connstr == "" {
		return nil, aerr.ErrInvalidConf.WithUserMsg("invalid (empty) database connection string")
	}

	return db.NewSQLDatabase("postgresql", "pgx", connstr, goose.DialectPostgres, poolConf), nil
}
