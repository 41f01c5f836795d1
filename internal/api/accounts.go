package api

//
// accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/server/srvsupport"
	"gitlab.com/kabes/go-chat/internal/service"
)

// accountResource handle sign-up, login and logout.
type accountResource struct {
	accountsSrv *service.AccountsSrv
	authSrv     *service.AuthSrv
}

func newAccountResource(i do.Injector) (accountResource, error) {
	return accountResource{
		accountsSrv: do.MustInvoke[*service.AccountsSrv](i),
		authSrv:     do.MustInvoke[*service.AuthSrv](i),
	}, nil
}

func (ar accountResource) Routes(r chi.Router) {
	r.Post(`/account`, srvsupport.WrapNamed(ar.signUp, "api_account_signup"))
	r.Post(`/login`, srvsupport.WrapNamed(ar.login, "api_account_login"))
	r.Delete(`/session`, srvsupport.WrapNamed(ar.logout, "api_account_logout"))
}

func (ar accountResource) signUp(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	cmd := command.SignUpCmd{
		UserID:   param(r, paramUserID),
		Password: r.FormValue(paramPassword),
	}

	if err := ar.accountsSrv.SignUp(ctx, &cmd); err != nil {
		logger.Info().Err(err).Str(common.LogKeyUserID, cmd.UserID).
			Msgf("AccountResource: sign up failed error=%q", err)

		msg := aerr.GetUserMessageOr(err, aerr.GetUserMessage(common.ErrAccountWrite))
		srvsupport.WriteError(w, r, http.StatusForbidden, msg)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (ar accountResource) login(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	userID := param(r, paramUserID)

	sess, err := ar.authSrv.Login(ctx, userID, r.FormValue(paramPassword))
	if err != nil {
		if aerr.HasTag(err, aerr.InternalError) {
			logger.Error().Err(err).Str(common.LogKeyUserID, userID).Msgf("AccountResource: login error=%q", err)
			srvsupport.CheckAndWriteError(w, r, err)

			return
		}

		srvsupport.WriteError(w, r, http.StatusForbidden, aerr.GetUserMessage(err))

		return
	}

	res := struct {
		SessionID string `json:"session_id"`
	}{sess.ID}

	srvsupport.RenderJSON(w, r, &res)
}

func (ar accountResource) logout(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	sessionID := param(r, paramSessionID)
	if sessionID == "" {
		sessionID = r.Header.Get(headerSessionID)
	}

	if sessionID == "" {
		srvsupport.WriteError(w, r, http.StatusForbidden, "Session information absence")

		return
	}

	if !ar.authSrv.Logout(ctx, sessionID) {
		logger.Debug().Str(common.LogKeySessionID, sessionID).Msg("AccountResource: logout unknown session")
		srvsupport.WriteError(w, r, http.StatusNotFound, "")

		return
	}

	w.WriteHeader(http.StatusOK)
}
