// Package api handle requests to chat endpoints.
package api

//
// api.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/service"
)

const (
	paramUserID    = "id"
	paramPassword  = "pwd"
	paramSessionID = "session_id"
	paramRoom      = "chat_room"
	paramMessage   = "chat_message"

	headerSessionID = "Session-Id"
)

// API is handler for all chat endpoints.
type API struct {
	router *chi.Mux
}

func New(i do.Injector) (API, error) {
	accountResource := do.MustInvoke[accountResource](i)
	chatResource := do.MustInvoke[chatResource](i)
	authSrv := do.MustInvoke[*service.AuthSrv](i)

	router := chi.NewRouter()

	router.Group(accountResource.Routes)

	router.Group(func(r chi.Router) {
		r.Use(newSessionMiddleware(authSrv))
		chatResource.Routes(r)
	})

	return API{router}, nil
}

func (a *API) Routes() *chi.Mux {
	return a.router
}

// param return trimmed value from query string or form body.
func param(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}
