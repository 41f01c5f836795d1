// Package server start main and management http servers.
package server

//
// server.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	chatapi "gitlab.com/kabes/go-chat/internal/api"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/config"
)

const (
	defaultReadTimeout    = 60 * time.Second
	defaultWriteTimeout   = 60 * time.Second
	defaultMaxHeaderBytes = 1 << 20
)

var Package = do.Package(
	do.Lazy(New),
	do.Lazy(NewMgmt),
)

// Server serve chat api.
type Server struct {
	*httpServer
}

func New(injector do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.ServerConf](injector)
	api := do.MustInvoke[chatapi.API](injector)

	webroot := cfg.MainServer.WebRoot

	var promReg prometheus.Registerer
	if cfg.EnableMetrics {
		promReg = prometheus.DefaultRegisterer
	}

	// routes
	router := chi.NewRouter()
	router.Use(middleware.Heartbeat(webroot + "/ping"))
	router.Use(middleware.RealIP)

	router.Group(func(group chi.Router) {
		group.Use(hlog.RequestIDHandler(common.LogKeyReqID, "Request-Id"))

		if cfg.DebugFlags.HasFlag(config.DebugFlightRecorder) {
			group.Use(newFRMiddleware())
		}

		if cfg.DebugFlags.HasFlag(config.DebugTrace) {
			group.Use(newTracingMiddleware(cfg))
		}

		group.Use(newLogMiddleware(cfg))
		group.Use(newRecoverMiddleware)
		group.Use(middleware.CleanPath)
		group.
			With(newPromMiddleware("api", nil, promReg)).
			With(middleware.NoCache).
			Mount(webroot+"/", api.Routes())
	})

	if cfg.MgmtEnabledOnMainServer() {
		log.Logger.Warn().Msg("Server: management endpoints enabled on main server")
		createMgmtRouters(injector, router, cfg, cfg.MainServer)
	}

	return &Server{newHTTPServer("Server", router, cfg.MainServer, cfg.DebugFlags)}, nil
}

//-------------------------------------------------------------

// httpServer is single listener with its router; base for main and
// management servers.
type httpServer struct {
	name   string
	router chi.Router
	listen config.ListenConf
	debug  config.DebugFlags
	s      *http.Server
}

func newHTTPServer(name string, router chi.Router, listen config.ListenConf, debug config.DebugFlags) *httpServer {
	return &httpServer{
		name:   name,
		router: router,
		listen: listen,
		debug:  debug,
		s: &http.Server{
			Addr:           listen.Address,
			Handler:        router,
			ReadTimeout:    defaultReadTimeout,
			WriteTimeout:   defaultWriteTimeout,
			MaxHeaderBytes: defaultMaxHeaderBytes,
		},
	}
}

// Handler return root handler of server.
func (s *httpServer) Handler() http.Handler {
	return s.router
}

// Start listen on configured address and serve requests in background.
func (s *httpServer) Start(ctx context.Context) error {
	logger := log.Logger.With().Str("server", s.name).Logger()

	if s.debug.HasFlag(config.DebugRouter) {
		logRoutes(ctx, s.name, s.router)
	}

	listener, err := newListener(ctx, s.listen)
	if err != nil {
		return aerr.Wrapf(err, "start listen error").WithMeta("server", s.name)
	}

	logger.Log().Msgf("%s: listen on address=%s https=%v webroot=%q",
		s.name, s.listen.Address, s.listen.TLSEnabled(), s.listen.WebRoot)

	go func() {
		if err := s.s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msgf("%s: serve error=%q", s.name, err)
		}
	}()

	return nil
}

// Shutdown stop accepting connections and wait for active requests.
// Hijacked websocket connections are closed by hub.
func (s *httpServer) Shutdown(ctx context.Context) error {
	logger := log.Ctx(ctx)
	logger.Debug().Msgf("%s: stopping...", s.name)

	if err := s.s.Shutdown(ctx); err != nil {
		return aerr.Wrapf(err, "shutdown server failed").WithMeta("server", s.name)
	}

	logger.Debug().Msgf("%s: stopped", s.name)

	return nil
}

//-------------------------------------------------------------

func logRoutes(ctx context.Context, name string, r chi.Routes) {
	logger := log.Ctx(ctx)

	walkFunc := func(method, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		_ = handler
		_ = middlewares
		route = strings.ReplaceAll(route, "/*/", "/")
		logger.Debug().Msgf("%s: ROUTE: %s %s", name, method, route)

		return nil
	}

	if err := chi.Walk(r, walkFunc); err != nil {
		logger.Error().Err(err).Msgf("Server: routers walk error: %s", err)
	}
}

func newListener(ctx context.Context, scfg config.ListenConf) (net.Listener, error) {
	if !scfg.TLSEnabled() {
		lc := net.ListenConfig{}

		l, err := lc.Listen(ctx, "tcp", scfg.Address)
		if err != nil {
			return nil, aerr.Wrapf(err, "listen failed").WithMeta("address", scfg.Address)
		}

		return l, nil
	}

	cert, err := tls.LoadX509KeyPair(scfg.TLSCert, scfg.TLSKey)
	if err != nil {
		return nil, aerr.Wrapf(err, "load certificates failed").
			WithMeta("cert", scfg.TLSCert, "key", scfg.TLSKey)
	}

	cfg := tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	l, err := tls.Listen("tcp", scfg.Address, &cfg)
	if err != nil {
		return nil, aerr.Wrapf(err, "tls listen failed").WithMeta("address", scfg.Address)
	}

	return l, nil
}
