package service

//
// testhelpers_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/infra/sqlite"
	"gitlab.com/kabes/go-chat/internal/model"
	"gitlab.com/kabes/go-chat/internal/repository"
	"gitlab.com/kabes/go-chat/internal/session"
)

type testNotifier struct {
	mu   sync.Mutex
	msgs []model.ChatMessage
}

func (n *testNotifier) Publish(msg model.ChatMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.msgs = append(n.msgs, msg)
}

func (n *testNotifier) published() []model.ChatMessage {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]model.ChatMessage(nil), n.msgs...)
}

func prepareTests(t *testing.T) (context.Context, *do.RootScope) {
	t.Helper()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).With().Caller().Stack().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	ctx := log.Logger.WithContext(context.Background())
	i := do.New(Package)

	repo, err := sqlite.NewRepository(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("create repository error: %#+v", err)
	}

	if err := repo.Open(ctx); err != nil {
		t.Fatalf("open repository error: %#+v", err)
	}

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("prepare db error: %#+v", err)
	}

	mgr, err := session.NewManager(session.Config{AliveTime: time.Minute, SweepInterval: time.Second})
	if err != nil {
		t.Fatalf("create session manager error: %#+v", err)
	}

	do.ProvideValue[repository.Repository](i, repo)
	do.ProvideValue(i, mgr)
	do.ProvideValue(i, &testNotifier{})

	t.Cleanup(func() {
		_ = i.Shutdown()
	})

	return ctx, i
}

func prepareTestAccount(ctx context.Context, t *testing.T, i do.Injector, userID string) {
	t.Helper()

	accountsSrv := do.MustInvoke[*AccountsSrv](i)
	if err := accountsSrv.SignUp(ctx, &command.SignUpCmd{UserID: userID, Password: userID + "123"}); err != nil {
		t.Fatalf("create test account failed: %#+v", err)
	}
}

func prepareTestRoom(ctx context.Context, t *testing.T, i do.Injector, room string) {
	t.Helper()

	chatSrv := do.MustInvoke[*ChatSrv](i)
	if err := chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "admin", Name: room}); err != nil {
		t.Fatalf("create test room failed: %#+v", err)
	}
}
