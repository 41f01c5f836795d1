package server

//
// trace.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/config"
	xtrace "golang.org/x/net/trace"
)

const traceFamily = "chat.api"

// newTracingMiddleware start net/trace trace for each api request; traces are
// visible on /debug/requests for callers allowed by management access list.
func newTracingMiddleware(cfg *config.ServerConf) func(http.Handler) http.Handler {
	xtrace.AuthRequest = cfg.AuthMgmtRequest

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipLogRequest(r) {
				next.ServeHTTP(w, r)

				return
			}

			ctx := r.Context()
			reqid := requestID(ctx)

			pprof.SetGoroutineLabels(pprof.WithLabels(ctx, pprof.Labels("reqid", reqid)))

			tr := xtrace.New(traceFamily, r.Method+" "+r.URL.Path)
			tr.LazyPrintf("req_id=%s remote=%s", reqid, r.RemoteAddr)

			defer tr.Finish()

			next.ServeHTTP(w, r.WithContext(xtrace.NewContext(ctx, tr)))
		})
	}
}

// mountXTrace mount net/trace pages in debug router.
func mountXTrace(debug chi.Router) {
	debug.Get("/requests", xtrace.Traces)
	debug.Get("/events", xtrace.Events)
}

func requestID(ctx context.Context) string {
	if id, ok := hlog.IDFromCtx(ctx); ok {
		return id.String()
	}

	return "unknown"
}

//-------------------------------------------------------------

const (
	// FlightRecorderThreshold is minimal duration of request that trigger snapshot.
	FlightRecorderThreshold = 200 * time.Millisecond
	flightRecorderMaxBytes  = 1 << 20
)

// frMiddleware keep flight recorder running and write one snapshot for the
// first request slower than FlightRecorderThreshold. Websocket streams are
// not measured.
type frMiddleware struct {
	once sync.Once
	fr   *trace.FlightRecorder
	dir  string
}

func newFRMiddleware() func(http.Handler) http.Handler {
	frm := &frMiddleware{
		fr: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   FlightRecorderThreshold,
			MaxBytes: flightRecorderMaxBytes,
		}),
		dir: os.TempDir(),
	}

	if err := frm.fr.Start(); err != nil {
		log.Logger.Error().Err(err).Msgf("FlightRecorder: start error=%q", err)

		return func(next http.Handler) http.Handler { return next }
	}

	log.Logger.Warn().Msgf("FlightRecorder: enabled; threshold=%s dir=%s", FlightRecorderThreshold, frm.dir)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWebsocketRequest(r) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()

			next.ServeHTTP(w, r)

			if frm.fr.Enabled() && time.Since(start) > FlightRecorderThreshold {
				go frm.captureSnapshot(requestID(r.Context()))
			}
		})
	}
}

func (f *frMiddleware) captureSnapshot(reqid string) {
	f.once.Do(func() {
		logger := log.Logger.With().Str(common.LogKeyReqID, reqid).Logger()
		fname := filepath.Join(f.dir, "gochat-"+time.Now().Format("20060102T150405")+"-"+reqid+".trace")

		fout, err := os.Create(fname)
		if err != nil {
			logger.Error().Err(err).Msgf("FlightRecorder: create snapshot file %q error=%q", fname, err)

			return
		}
		defer fout.Close()

		if _, err = f.fr.WriteTo(fout); err != nil {
			logger.Error().Err(err).Msgf("FlightRecorder: write snapshot %q error=%q", fname, err)

			return
		}

		f.fr.Stop()
		logger.Warn().Msgf("FlightRecorder: snapshot saved to %q", fname)
	})
}

func isWebsocketRequest(r *http.Request) bool {
	return r.Header.Get("Upgrade") == "websocket"
}
