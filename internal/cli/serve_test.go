// serve_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
package cli

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/hub"
	"gitlab.com/kabes/go-chat/internal/session"
)

func TestWorkersRunUntilShutdown(t *testing.T) {
	mgr, err := session.NewManager(session.Config{AliveTime: time.Minute, SweepInterval: 5 * time.Millisecond})
	assert.NoErr(t, err)

	h := hub.New(nil)

	injector := do.New()
	do.ProvideValue(injector, mgr)
	do.ProvideValue(injector, h)

	logger := zerolog.Nop()
	runner := serverRunner{injector: injector, logger: &logger}

	ctx, cancel := context.WithCancel(context.Background())
	runner.startWorkers(ctx)

	// termination signal
	cancel()
	time.Sleep(50 * time.Millisecond)

	assert.NoErr(t, mgr.HealthCheck(context.Background()))

	sctx, scancel := context.WithTimeout(context.Background(), time.Second)
	defer scancel()

	assert.NoErr(t, mgr.Shutdown(sctx))
	assert.NoErr(t, h.Shutdown(sctx))
	assert.NoErr(t, mgr.HealthCheck(context.Background()))
}
