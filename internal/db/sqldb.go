package db

//
// sqldb.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"database/sql"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

// PoolConf configure connection pool.
type PoolConf struct {
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
	MaxIdle     int
	MaxOpen     int
}

// ConnHook is executed on connection taken from or returned to pool.
type ConnHook func(ctx context.Context, conn sqlx.ExecerContext) error

// SQLDatabase is sql database accessed by sqlx; implement Database.
type SQLDatabase struct {
	// OnOpen is run on every connection before use.
	OnOpen ConnHook
	// OnClose is run on connection before it is returned to pool.
	OnClose ConnHook

	name    string
	driver  string
	connstr string
	pool    PoolConf
	dialect goose.Dialect

	db *sqlx.DB
}

func NewSQLDatabase(name, driver, connstr string, dialect goose.Dialect, pool PoolConf) *SQLDatabase {
	return &SQLDatabase{
		name:    name,
		driver:  driver,
		connstr: connstr,
		dialect: dialect,
		pool:    pool,
	}
}

func (d *SQLDatabase) Open(ctx context.Context) error {
	logger := log.Ctx(ctx)
	logger.Debug().Msgf("db: connecting to %s", d.name)

	sqldb, err := sqlx.Open(d.driver, d.connstr)
	if err != nil {
		return aerr.Wrapf(err, "open database failed").WithTag(aerr.InternalError).
			WithMeta("driver", d.driver)
	}

	sqldb.SetConnMaxIdleTime(d.pool.MaxIdleTime)
	sqldb.SetConnMaxLifetime(d.pool.MaxLifetime)
	sqldb.SetMaxIdleConns(d.pool.MaxIdle)
	sqldb.SetMaxOpenConns(d.pool.MaxOpen)

	if d.OnOpen != nil {
		if err := d.OnOpen(ctx, sqldb); err != nil {
			_ = sqldb.Close()

			return aerr.Wrapf(err, "open database failed - run init script error").WithTag(aerr.InternalError)
		}
	}

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()

		return aerr.Wrapf(err, "ping database failed").WithTag(aerr.InternalError)
	}

	d.db = sqldb

	return nil
}

// Close database; closing not opened database is no-op.
func (d *SQLDatabase) Close(ctx context.Context) error {
	if d.db == nil {
		return nil
	}

	log.Ctx(ctx).Debug().Msgf("db: closing %s database", d.name)

	err := d.db.Close()
	d.db = nil

	if err != nil {
		return aerr.Wrapf(err, "close db error")
	}

	return nil
}

// DB return underlying database or nil when not opened.
func (d *SQLDatabase) DB() *sql.DB {
	if d.db == nil {
		return nil
	}

	return d.db.DB
}

func (d *SQLDatabase) Migrate(ctx context.Context, migrations fs.FS) error {
	return Migrate(ctx, d.DB(), d.dialect, migrations)
}

// Exec run `query` on database outside of any connection from context.
func (d *SQLDatabase) Exec(ctx context.Context, query string) error {
	if d.db == nil {
		return aerr.ErrDatabase.WithMsg("database not opened")
	}

	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "execute query failed")
	}

	return nil
}

func (d *SQLDatabase) GetConnection(ctx context.Context) (*sqlx.Conn, error) {
	if d.db == nil {
		return nil, aerr.ErrDatabase.WithMsg("database not opened")
	}

	conn, err := d.db.Connx(ctx)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrDatabase, err, "failed open connection")
	}

	if d.OnOpen != nil {
		if err := d.OnOpen(ctx, conn); err != nil {
			_ = conn.Close()

			return nil, aerr.ApplyFor(aerr.ErrDatabase, err, "failed run onOpenConn scripts")
		}
	}

	return conn, nil
}

func (d *SQLDatabase) CloseConnection(ctx context.Context, conn *sqlx.Conn) error {
	if d.OnClose != nil {
		if err := d.OnClose(ctx, conn); err != nil {
			_ = conn.Close()

			return aerr.ApplyFor(aerr.ErrDatabase, err, "run scripts onClose failed")
		}
	}

	if err := conn.Close(); err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "close connection failed")
	}

	return nil
}

func (d *SQLDatabase) HealthCheck(ctx context.Context) error {
	if d.db == nil {
		return aerr.ErrDatabase.WithMsg("database not opened")
	}

	if err := d.db.PingContext(ctx); err != nil {
		return aerr.Wrapf(err, "ping database failed").WithTag(aerr.InternalError)
	}

	return nil
}
