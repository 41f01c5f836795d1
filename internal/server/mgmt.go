package server

//
// mgmt.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	dochi "github.com/samber/do/http/chi/v2"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/config"
	"gitlab.com/kabes/go-chat/internal/session"
)

// MgmtServer serve health, metrics and debug endpoints on separate address.
type MgmtServer struct {
	*httpServer
}

func NewMgmt(injector do.Injector) (*MgmtServer, error) {
	cfg := do.MustInvoke[*config.ServerConf](injector)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Heartbeat(cfg.MgmtServer.WebRoot + "/ping"))

	createMgmtRouters(injector, router, cfg, cfg.MgmtServer)

	return &MgmtServer{newHTTPServer("MgmtServer", router, cfg.MgmtServer, cfg.DebugFlags)}, nil
}

//-------------------------------------------------------------

// mgmtRoutes serve management endpoints; the same routes are mounted on
// main server or on separate management server.
type mgmtRoutes struct {
	injector do.Injector
	cfg      *config.ServerConf
}

func createMgmtRouters(injector do.Injector, router *chi.Mux, cfg *config.ServerConf, scfg config.ListenConf) {
	routes := mgmtRoutes{injector: injector, cfg: cfg}
	webroot := scfg.WebRoot

	router.Get(webroot+"/health", routes.health)

	if cfg.EnableMetrics {
		router.Method(http.MethodGet, webroot+"/metrics", newMetricsHandler())
	}

	if cfg.DebugFlags.HasFlag(config.DebugDo) {
		dochi.Use(router, webroot+"/debug/do", injector)
	}

	router.Route(webroot+"/debug", func(debug chi.Router) {
		debug.Use(hlog.RequestIDHandler(common.LogKeyReqID, "Request-Id"))
		debug.Use(newVerySimpleLogMiddleware("MgmtServer"))
		debug.Use(newRecoverMiddleware)
		debug.Use(newAuthMgmtMiddleware(cfg))

		flags := cfg.DebugFlags

		if flags.HasFlag(config.DebugGo) {
			debug.Mount("/", middleware.Profiler())
		}

		if flags.HasFlag(config.DebugTrace) {
			mountXTrace(debug)
		}

		if flags.HasFlag(config.DebugSessions) {
			debug.Get("/sessions", routes.sessions)
		}
	})
}

//-------------------------------------------------------------

// health check all services registered in injector. Respond "ok" or "error"
// (with 503); with `verbose` parameter trusted clients get status of each
// service.
func (m *mgmtRoutes) health(w http.ResponseWriter, r *http.Request) {
	allowed, sensitive := m.cfg.AuthMgmtRequest(r)
	if !allowed {
		w.WriteHeader(http.StatusForbidden)

		return
	}

	status := make(map[string]string)
	healthy := true

	for service, err := range m.injector.RootScope().HealthCheckWithContext(r.Context()) {
		if err == nil {
			status[service] = "ok"

			continue
		}

		log.Logger.Error().Err(err).Str("service", service).
			Msgf("HealthChecker: service=%q healthcheck failed: %s", service, err)

		status[service] = err.Error()
		healthy = false
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
	}

	if sensitive && r.URL.Query().Has("verbose") {
		render.JSON(w, r, status)

		return
	}

	if healthy {
		render.PlainText(w, r, "ok")
	} else {
		render.PlainText(w, r, "error")
	}
}

//-------------------------------------------------------------

type sessionInfo struct {
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// sessions list live sessions ordered by user; session ids are visible only
// for clients with access to sensitive data.
func (m *mgmtRoutes) sessions(w http.ResponseWriter, r *http.Request) {
	mgr, err := do.Invoke[*session.Manager](m.injector)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("MgmtServer: get session manager failed")
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	_, sensitive := m.cfg.AuthMgmtRequest(r)

	byUser := make(map[string][]sessionInfo)

	for _, s := range mgr.Sessions() {
		si := sessionInfo{UserID: s.UserID, LastActivity: s.LastActivity}
		if sensitive {
			si.SessionID = s.ID
		}

		byUser[s.UserID] = append(byUser[s.UserID], si)
	}

	res := make([]sessionInfo, 0, len(byUser))
	for _, user := range slices.Sorted(maps.Keys(byUser)) {
		res = append(res, byUser[user]...)
	}

	render.JSON(w, r, res)
}
