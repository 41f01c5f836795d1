package server

//
// middlewares.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/config"
)

// requestLogger log start and end of each request; with logBody also request
// and response bodies and headers are logged on debug level.
type requestLogger struct {
	logBody bool
}

func newLogMiddleware(cfg *config.ServerConf) func(http.Handler) http.Handler {
	rl := requestLogger{logBody: cfg.DebugFlags.HasFlag(config.DebugMsgBody)}

	return rl.handler
}

func (rl requestLogger) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipLogRequest(r) {
			next.ServeHTTP(w, r)

			return
		}

		start := time.Now()
		ctx := r.Context()
		logger := log.Logger.With().Str(common.LogKeyReqID, requestID(ctx)).Logger()
		r = r.WithContext(logger.WithContext(ctx))

		event := logger.Info().
			Str("url", r.URL.Redacted()).
			Str("remote", r.RemoteAddr).
			Str("method", r.Method)
		if rl.logBody {
			event = event.Interface(common.LogKeyRequestHeaders, r.Header)
		}

		event.Msg("webhandler: request start")

		var reqBody, respBody bytes.Buffer

		wrw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		if rl.logBody && !isWebsocketRequest(r) {
			r.Body = io.NopCloser(io.TeeReader(r.Body, &reqBody))
			wrw.Tee(&respBody)
		}

		defer func() {
			if rl.logBody {
				logger.Debug().
					Str("request_body", reqBody.String()).
					Str("response_body", respBody.String()).
					Interface(common.LogKeyResponseHeaders, wrw.Header()).
					Msg("webhandler: request data")
			}

			status := responseStatus(r, wrw)

			logger.WithLevel(statusLogLevel(status)).
				Str("uri", r.RequestURI).
				Int("status", status).
				Int("size", wrw.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("webhandler: request finished")
		}()

		next.ServeHTTP(wrw, r)
	})
}

// shouldSkipLogRequest determine which request should not be logged.
func shouldSkipLogRequest(r *http.Request) bool {
	path := r.URL.Path

	return strings.HasSuffix(path, "/ping") || strings.HasSuffix(path, "/health")
}

// responseStatus return status written by handler; hijacked websocket
// connections never write status.
func responseStatus(r *http.Request, wrw middleware.WrapResponseWriter) int {
	switch status := wrw.Status(); {
	case status != 0:
		return status
	case isWebsocketRequest(r):
		return http.StatusSwitchingProtocols
	default:
		return http.StatusOK
	}
}

func statusLogLevel(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest && status != http.StatusNotFound:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

//-------------------------------------------------------------

func newRecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(err)
			}

			log.Ctx(r.Context()).Error().Interface("panic", rec).Bytes("stack", debug.Stack()).
				Msg("webhandler: panic when handling request")

			if !isWebsocketRequest(r) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

//-------------------------------------------------------------

// newVerySimpleLogMiddleware log only finished requests on debug level.
func newVerySimpleLogMiddleware(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(wrw, r)

			log.Logger.Debug().
				Str(common.LogKeyReqID, requestID(r.Context())).
				Str("remote", r.RemoteAddr).
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Int("status", responseStatus(r, wrw)).
				Int("size", wrw.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msgf("%s: request finished", name)
		})
	}
}

// newAuthMgmtMiddleware reject requests from addresses not allowed to access management endpoints.
func newAuthMgmtMiddleware(cfg *config.ServerConf) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowed, _ := cfg.AuthMgmtRequest(r); !allowed {
				hlog.FromRequest(r).Warn().Str("remote", r.RemoteAddr).
					Msg("MgmtServer: access to management endpoint denied")
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
