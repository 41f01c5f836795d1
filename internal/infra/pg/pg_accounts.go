package pg

//
// sqlite_accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/db"
	"gitlab.com/kabes/go-chat/internal/model"
)

func (r *Repository) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	return db.InConnectionR(ctx, r.db, func(ctx context.Context) (*model.Account, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Str(common.LogKeyUserID, userID).Msgf("pg.Repository: get account user_id=%s", userID)

		dbctx := db.MustCtx(ctx)
		account := model.Account{}

		err := dbctx.GetContext(ctx, &account,
			"SELECT user_id, password FROM accounts WHERE user_id=$1",
			userID)

		switch {
		case err == nil:
			return &account, nil
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrNoData
		default:
			return nil, aerr.Wrapf(err, "select account failed").WithTag(aerr.InternalError)
		}
	})
}

func (r *Repository) SaveAccount(ctx context.Context, account *model.Account) error {
	_, err := db.InConnectionR(ctx, r.db, func(ctx context.Context) (any, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Object("account", account).Msgf("pg.Repository: insert account user_id=%s", account.UserID)

		dbctx := db.MustCtx(ctx)

		res, err := dbctx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, password, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING`,
			account.UserID, account.Password, time.Now().UTC())
		if err != nil {
			return nil, aerr.Wrapf(err, "insert account failed").WithTag(aerr.InternalError).
				WithMeta("user_id", account.UserID)
		}

		if cnt, err := res.RowsAffected(); err != nil {
			return nil, aerr.Wrapf(err, "get affected rows failed").WithTag(aerr.InternalError)
		} else if cnt == 0 {
			return nil, common.ErrDuplicateID
		}

		return nil, nil //nolint:nilnil
	})

	return err
}

func (r *Repository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return db.InConnectionR(ctx, r.db, func(ctx context.Context) ([]model.Account, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Msg("pg.Repository: list accounts")

		var accounts []model.Account

		dbctx := db.MustCtx(ctx)

		err := dbctx.SelectContext(ctx, &accounts, "SELECT user_id, password FROM accounts ORDER BY user_id")
		if err != nil {
			return nil, aerr.Wrapf(err, "select accounts failed").WithTag(aerr.InternalError)
		}

		return accounts, nil
	})
}
