//
// auth.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/session"
)

// AuthSrv bind accounts with sessions.
type AuthSrv struct {
	accounts *AccountsSrv
	sessions *session.Manager
}

func NewAuthSrv(i do.Injector) (*AuthSrv, error) {
	return &AuthSrv{
		accounts: do.MustInvoke[*AccountsSrv](i),
		sessions: do.MustInvoke[*session.Manager](i),
	}, nil
}

// Login check credentials and return session for user.
func (a *AuthSrv) Login(ctx context.Context, userID, password string) (session.Session, error) {
	logger := log.Ctx(ctx)

	if _, err := a.accounts.Login(ctx, userID, password); err != nil {
		result := common.LogAuthResultFailed
		if aerr.HasTag(err, aerr.InternalError) {
			result = common.LogAuthResultError
		}

		logger.Info().Str(common.LogKeyUserID, userID).Str(common.LogKeyAuthResult, result).
			Msgf("AuthSrv: login failed user_id=%s error=%q", userID, aerr.GetUserMessageOr(err, err.Error()))
		common.TraceErrorLazyPrintf(ctx, "auth: login failed user_id=%s", userID)

		return session.Session{}, err
	}

	sess := a.sessions.CreateSession(userID)
	common.TraceLazyPrintf(ctx, "auth: session created user_id=%s", userID)

	logger.Info().Str(common.LogKeyUserID, userID).Str(common.LogKeyAuthResult, common.LogAuthResultSuccess).
		Msgf("AuthSrv: user logged in user_id=%s", userID)

	return sess, nil
}

// Logout remove session. Return false when session not exists.
func (a *AuthSrv) Logout(ctx context.Context, sessionID string) bool {
	if !a.sessions.DeleteSession(sessionID) {
		return false
	}

	log.Ctx(ctx).Debug().Str(common.LogKeySessionID, sessionID).Msg("AuthSrv: session deleted")

	return true
}

// Authorize validate session for incoming request: refresh activity then
// resolve owner. Return false when session is not valid.
func (a *AuthSrv) Authorize(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" || !session.IsValidID(sessionID) {
		return "", false
	}

	if !a.sessions.RenewLastActivity(sessionID) {
		return "", false
	}

	var userID string
	if !a.sessions.GetUserID(sessionID, &userID) {
		// session expired between renew and lookup
		log.Ctx(ctx).Debug().Str(common.LogKeySessionID, sessionID).Msg("AuthSrv: session lost during authorization")

		return "", false
	}

	return userID, true
}
