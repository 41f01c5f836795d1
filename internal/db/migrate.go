package db

//
// migrate.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

// Migrate apply all pending goose migrations from `migrations` directory of
// `migfs` one by one.
func Migrate(ctx context.Context, sqldb *sql.DB, dialect goose.Dialect, migfs fs.FS) error {
	if sqldb == nil {
		return aerr.ErrDatabase.WithMsg("database not opened")
	}

	logger := log.Ctx(ctx).With().Str("dialect", string(dialect)).Logger()

	migdir, err := fs.Sub(migfs, "migrations")
	if err != nil {
		return aerr.Wrapf(err, "prepare migration fs failed").WithTag(aerr.InternalError)
	}

	provider, err := goose.NewProvider(dialect, sqldb, migdir)
	if err != nil {
		return aerr.Wrapf(err, "create migration provider failed").WithTag(aerr.InternalError)
	}

	before, err := provider.GetDBVersion(ctx)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "", "failed to check current database version")
	}

	for {
		res, err := provider.UpByOne(ctx)
		if errors.Is(err, goose.ErrNoNextVersion) {
			break
		} else if err != nil {
			return aerr.ApplyFor(aerr.ErrDatabase, err, "", "migrate database up failed")
		}

		logger.Debug().Msgf("db: migration applied: %s", res)
	}

	after, err := provider.GetDBVersion(ctx)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "", "failed to check current database version")
	}

	logger.Info().Msgf("db: database version: %d -> %d", before, after)

	return nil
}
