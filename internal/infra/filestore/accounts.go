package filestore

//
// accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"slices"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

func (r *Repository) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	log.Ctx(ctx).Debug().Str(common.LogKeyUserID, userID).
		Msgf("filestore.Repository: get account user_id=%s", userID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	pwd, ok := r.accounts[userID]
	if !ok {
		return nil, common.ErrNoData
	}

	return &model.Account{UserID: userID, Password: pwd}, nil
}

func (r *Repository) SaveAccount(ctx context.Context, account *model.Account) error {
	log.Ctx(ctx).Debug().Object("account", account).
		Msgf("filestore.Repository: insert account user_id=%s", account.UserID)

	if _, _, err := parseAccountLine(account.UserID + accountDelimiter + account.Password); err != nil {
		return aerr.Wrapf(common.ErrAccountWrite, "account can not be stored in file")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.UserID]; ok {
		return common.ErrDuplicateID
	}

	if err := r.appendLine(AccountsFile, account.UserID+accountDelimiter+account.Password); err != nil {
		return aerr.Wrapf(common.ErrAccountWrite, "append account failed: %s", err)
	}

	r.accounts[account.UserID] = account.Password

	return nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]model.Account, error) {
	log.Ctx(ctx).Debug().Msg("filestore.Repository: list accounts")

	r.mu.RLock()

	res := make([]model.Account, 0, len(r.accounts))
	for id, pwd := range r.accounts {
		res = append(res, model.Account{UserID: id, Password: pwd})
	}

	r.mu.RUnlock()

	slices.SortFunc(res, func(a, b model.Account) int {
		switch {
		case a.UserID < b.UserID:
			return -1
		case a.UserID > b.UserID:
			return 1
		}

		return 0
	})

	return res, nil
}
