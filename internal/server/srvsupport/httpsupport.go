// Package srvsupport contains helpers shared by http handlers.
package srvsupport

//
// httpsupport.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
)

// HandlerFunc is http handler with request context and logger resolved.
type HandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, logger *zerolog.Logger)

// WrapNamed convert `handler` into http.HandlerFunc. `name` is put as `handler`
// into request logger.
func WrapNamed(handler HandlerFunc, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r).With().Str("handler", name).Logger()
		ctx := logger.WithContext(r.Context())

		handler(ctx, w, r.WithContext(ctx), &logger)
	}
}

// CheckAndWriteError map error into response status; user message from error
// is used as response body. Unknown errors are never described.
func CheckAndWriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError && !aerr.HasTag(err, aerr.InternalError) {
		WriteError(w, r, status, "")

		return
	}

	WriteError(w, r, status, aerr.GetUserMessage(err))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidSession), errors.Is(err, common.ErrUnauthorized):
		return http.StatusForbidden
	case aerr.IsNotFound(err):
		return http.StatusNotFound
	case aerr.HasTag(err, aerr.ValidationError):
		return http.StatusBadRequest
	case aerr.HasTag(err, aerr.DataError):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
