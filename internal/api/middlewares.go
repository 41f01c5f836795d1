package api

//
// middlewares.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"net/http"

	"github.com/rs/zerolog/hlog"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/server/srvsupport"
	"gitlab.com/kabes/go-chat/internal/service"
)

//-------------------------------------------------------------

// newSessionMiddleware reject requests without valid session; put session
// owner into context and logger.
func newSessionMiddleware(authSrv *service.AuthSrv) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger := hlog.FromRequest(req)

			sessionID := param(req, paramSessionID)
			if sessionID == "" {
				sessionID = req.Header.Get(headerSessionID)
			}

			userID, ok := authSrv.Authorize(req.Context(), sessionID)
			if !ok {
				logger.Debug().Str(common.LogKeySessionID, sessionID).Msg("SessionMiddleware: invalid session")
				srvsupport.CheckAndWriteError(w, req, common.ErrInvalidSession)

				return
			}

			ctx := common.ContextWithUser(req.Context(), userID)
			ctx = common.ContextWithSession(ctx, sessionID)
			llogger := logger.With().Str(common.LogKeyUserID, userID).Logger()
			ctx = llogger.WithContext(ctx)

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
