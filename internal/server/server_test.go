package server

//
// server_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/api"
	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/config"
	"gitlab.com/kabes/go-chat/internal/hub"
	"gitlab.com/kabes/go-chat/internal/infra/filestore"
	"gitlab.com/kabes/go-chat/internal/repository"
	"gitlab.com/kabes/go-chat/internal/service"
	"gitlab.com/kabes/go-chat/internal/session"
)

func TestServerRoutes(t *testing.T) {
	handler := prepareTests(t, &config.ServerConf{
		MainServer: config.ListenConf{Address: ":18080", WebRoot: "/chat"},
	})

	code, body := doRequest(t, handler, http.MethodGet, "/chat/ping", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)
	assert.Equal(t, body, ".")

	code, _ = doRequest(t, handler, http.MethodPost, "/chat/account",
		url.Values{"id": {"user1"}, "pwd": {"password1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)

	code, body = doRequest(t, handler, http.MethodPost, "/chat/login",
		url.Values{"id": {"user1"}, "pwd": {"password1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)

	var res map[string]string
	assert.NoErr(t, json.Unmarshal([]byte(body), &res))
	assert.Equal(t, len(res["session_id"]), session.IDLength)

	// api is not available outside web root
	code, _ = doRequest(t, handler, http.MethodPost, "/login",
		url.Values{"id": {"user1"}, "pwd": {"password1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusNotFound)

	// mgmt endpoints disabled on main server
	code, _ = doRequest(t, handler, http.MethodGet, "/health", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusNotFound)
}

func TestServerMgmtOnMainServer(t *testing.T) {
	handler := prepareTests(t, &config.ServerConf{
		MainServer: config.ListenConf{Address: ":18080"},
		MgmtServer: config.ListenConf{Address: ":18080"},
		DebugFlags: config.NewDebugFlags(string(config.DebugSessions)),
	})

	code, body := doRequest(t, handler, http.MethodGet, "/health", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)
	assert.Equal(t, body, "ok")

	code, _ = doRequest(t, handler, http.MethodGet, "/health", nil, "8.8.8.8:1234")
	assert.Equal(t, code, http.StatusForbidden)

	// per-service report only for trusted clients
	code, body = doRequest(t, handler, http.MethodGet, "/health", url.Values{"verbose": {"1"}}, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)

	var status map[string]string
	assert.NoErr(t, json.Unmarshal([]byte(body), &status))

	for _, s := range status {
		assert.Equal(t, s, "ok")
	}

	code, body = doRequest(t, handler, http.MethodGet, "/health", url.Values{"verbose": {"1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)
	assert.Equal(t, body, "ok")

	code, _ = doRequest(t, handler, http.MethodPost, "/account",
		url.Values{"id": {"user1"}, "pwd": {"password1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)
	code, _ = doRequest(t, handler, http.MethodPost, "/login",
		url.Values{"id": {"user1"}, "pwd": {"password1"}}, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)

	// private network get sessions without ids
	code, body = doRequest(t, handler, http.MethodGet, "/debug/sessions", nil, "10.1.1.1:1234")
	assert.Equal(t, code, http.StatusOK)

	var sessions []sessionInfo
	assert.NoErr(t, json.Unmarshal([]byte(body), &sessions))
	assert.Len(t, sessions, 1)
	assert.Equal(t, sessions[0].UserID, "user1")
	assert.Equal(t, sessions[0].SessionID, "")

	// loopback see everything
	code, body = doRequest(t, handler, http.MethodGet, "/debug/sessions", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)
	assert.NoErr(t, json.Unmarshal([]byte(body), &sessions))
	assert.Len(t, sessions, 1)
	assert.Equal(t, len(sessions[0].SessionID), session.IDLength)

	code, _ = doRequest(t, handler, http.MethodGet, "/debug/sessions", nil, "8.8.8.8:1234")
	assert.Equal(t, code, http.StatusForbidden)
}

func TestMgmtServer(t *testing.T) {
	cfg := &config.ServerConf{
		MainServer: config.ListenConf{Address: ":18080"},
		MgmtServer: config.ListenConf{Address: ":18081", WebRoot: "/mgmt"},
	}
	i := prepareInjector(t, cfg)

	mgmt, err := do.Invoke[*MgmtServer](i)
	assert.NoErr(t, err)

	handler := mgmt.Handler()

	code, body := doRequest(t, handler, http.MethodGet, "/mgmt/health", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)
	assert.Equal(t, body, "ok")

	code, _ = doRequest(t, handler, http.MethodGet, "/mgmt/ping", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusOK)

	// sessions debug not enabled
	code, _ = doRequest(t, handler, http.MethodGet, "/mgmt/debug/sessions", nil, "127.0.0.1:1234")
	assert.Equal(t, code, http.StatusNotFound)
}

func TestShouldSkipLogRequest(t *testing.T) {
	for path, expected := range map[string]bool{
		"/chat/ping":        true,
		"/health":           true,
		"/chat/login":       false,
		"/chat/chatmessage": false,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, shouldSkipLogRequest(req), expected)
	}
}

//-------------------------------------------------------------

func prepareInjector(t *testing.T, cfg *config.ServerConf) do.Injector {
	t.Helper()

	assert.NoErr(t, cfg.Validate())

	repo, err := filestore.NewRepository(t.TempDir())
	assert.NoErr(t, err)
	assert.NoErr(t, repo.Open(context.Background()))

	mgr, err := session.NewManager(session.Config{AliveTime: time.Minute, SweepInterval: time.Second})
	assert.NoErr(t, err)

	h := hub.New(nil)
	h.Start()

	i := do.New(service.Package, api.Package, Package)
	do.ProvideValue(i, cfg)
	do.ProvideValue[repository.Repository](i, repo)
	do.ProvideValue(i, mgr)
	do.ProvideValue(i, h)

	t.Cleanup(func() {
		_ = i.Shutdown()
	})

	return i
}

func prepareTests(t *testing.T, cfg *config.ServerConf) http.Handler {
	t.Helper()

	srv, err := do.Invoke[*Server](prepareInjector(t, cfg))
	assert.NoErr(t, err)

	return srv.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path string, params url.Values, remote string,
) (int, string) {
	t.Helper()

	if params != nil {
		path += "?" + params.Encode()
	}

	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = remote

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec.Code, strings.TrimSpace(rec.Body.String())
}
