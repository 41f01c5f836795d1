//
// accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
	"gitlab.com/kabes/go-chat/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AccountsSrv struct {
	accountsRepo repository.AccountRepository
	passHasher   PasswordHasher
}

func NewAccountsSrv(i do.Injector) (*AccountsSrv, error) {
	repo := do.MustInvoke[repository.Repository](i)

	return &AccountsSrv{repo, BCryptPasswordHasher{}}, nil
}

// SignUp register new account.
func (a *AccountsSrv) SignUp(ctx context.Context, cmd *command.SignUpCmd) error {
	if cmd == nil {
		panic("cmd is nil")
	}

	if err := cmd.Validate(); err != nil {
		return aerr.Wrapf(err, "validate account to add failed")
	}

	hashedPass, err := a.passHasher.HashPassword(cmd.Password)
	if err != nil {
		return aerr.Wrapf(err, "hash password failed").WithTag(aerr.InternalError)
	}

	err = a.accountsRepo.SaveAccount(ctx, &model.Account{UserID: cmd.UserID, Password: hashedPass})

	switch {
	case err == nil:
		log.Ctx(ctx).Info().Str(common.LogKeyUserID, cmd.UserID).
			Msgf("AccountsSrv: new account created user_id=%s", cmd.UserID)

		return nil
	case errors.Is(err, common.ErrDuplicateID), errors.Is(err, common.ErrAccountWrite):
		return err
	default:
		return aerr.ApplyFor(common.ErrAccountWrite, err)
	}
}

// Login check user credentials and return account.
func (a *AccountsSrv) Login(ctx context.Context, userID, password string) (model.Account, error) {
	if userID == "" || password == "" {
		return model.Account{}, common.ErrAccountInfoAbsence
	}

	account, err := a.accountsRepo.GetAccount(ctx, userID)
	if errors.Is(err, common.ErrNoData) {
		return model.Account{}, common.ErrUnknownUser
	} else if err != nil {
		return model.Account{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	if !a.passHasher.CheckPassword(password, account.Password) {
		return model.Account{}, common.ErrUnauthorized
	}

	return *account, nil
}

func (a *AccountsSrv) ListAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := a.accountsRepo.ListAccounts(ctx)
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return accounts, nil
}

//-------------------------------------------------------------

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(password, hash string) bool
}

type BCryptPasswordHasher struct{}

func (BCryptPasswordHasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(hash), err
}

func (BCryptPasswordHasher) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
