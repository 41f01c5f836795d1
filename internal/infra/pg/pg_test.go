package pg

//
// pg_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

func TestNewDatabaseEmptyConnstr(t *testing.T) {
	_, err := NewRepository("")
	assert.Err(t, err)
}

func TestRepository(t *testing.T) {
	ctx, repo := prepareTests(t)

	assert.NoErr(t, repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "pass1"}))
	assert.ErrSpec(t, repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "x"}), common.ErrDuplicateID)

	account, err := repo.GetAccount(ctx, "user1")
	assert.NoErr(t, err)
	assert.Equal(t, account.Password, "pass1")

	_, err = repo.GetAccount(ctx, "user2")
	assert.True(t, errors.Is(err, common.ErrNoData))

	assert.NoErr(t, repo.CreateRoom(ctx, "kaist"))
	assert.ErrSpec(t, repo.CreateRoom(ctx, "kaist"), common.ErrRoomExists)

	rooms, err := repo.ListRooms(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, rooms, []model.ChatRoom{{Name: "kaist"}})

	date := time.Unix(1700000000, 0)
	assert.NoErr(t, repo.SaveMessage(ctx, &model.ChatMessage{Date: date, UserID: "user1", Room: "kaist", Message: "hi"}))

	msgs, err := repo.ListMessages(ctx, "kaist")
	assert.NoErr(t, err)
	assert.Len(t, msgs, 1)
	assert.True(t, msgs[0].Date.Equal(date))
}

// prepareTests connect to database given by GOCHAT_TEST_PG_CONNSTR; test is
// skipped when variable is not set.
func prepareTests(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	connstr := os.Getenv("GOCHAT_TEST_PG_CONNSTR")
	if connstr == "" {
		t.Skip("GOCHAT_TEST_PG_CONNSTR not set")
	}

	ctx := context.Background()

	repo, err := NewRepository(connstr)
	assert.NoErr(t, err)
	assert.NoErr(t, repo.Open(ctx))
	assert.NoErr(t, repo.Migrate(ctx))
	assert.NoErr(t, repo.Clear(ctx))

	t.Cleanup(func() {
		_ = repo.Shutdown(context.Background())
	})

	return ctx, repo
}
