package sqlite

//
// sqlite_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

func TestPrepareSqliteConnstr(t *testing.T) {
	tests := []struct {
		connstr  string
		expected string
		experr   bool
	}{
		{"", "", true},
		{"?abc?_fk=1", "", true},
		{":memory:", ":memory:?_fk=ON", false},
		{"/abc/abc?_fk=1", "/abc/abc?_fk=1&_journal_mode=WAL&_synchronous=NORMAL", false},
		{"/abc/abc?_fk=0", "/abc/abc?_fk=0&_journal_mode=WAL&_synchronous=NORMAL", false},
		{
			"/abc/abc?__foreign_keys=ON",
			"/abc/abc?__foreign_keys=ON&_journal_mode=WAL&_synchronous=NORMAL", false,
		},
		{"/abc/abc", "/abc/abc?_fk=ON&_journal_mode=WAL&_synchronous=NORMAL", false},
		{"/abc/abc?_journal_mode=DELETE", "/abc/abc?_fk=ON&_journal_mode=DELETE&_synchronous=NORMAL", false},
		{"/abc/abc?_abc=123", "/abc/abc?_abc=123&_fk=ON&_journal_mode=WAL&_synchronous=NORMAL", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt), func(t *testing.T) {
			res, err := prepareSqliteConnstr(tt.connstr)
			if tt.experr {
				assert.Err(t, err)
			} else {
				assert.NoErr(t, err)
				assert.Equal(t, res, tt.expected)
			}
		})
	}
}

func TestRepositoryAccounts(t *testing.T) {
	ctx, repo := prepareTests(t)

	assert.NoErr(t, repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "pass1"}))
	assert.NoErr(t, repo.SaveAccount(ctx, &model.Account{UserID: "user0", Password: "pass0"}))

	err := repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "other"})
	assert.ErrSpec(t, err, common.ErrDuplicateID)

	account, err := repo.GetAccount(ctx, "user1")
	assert.NoErr(t, err)
	assert.Equal(t, account.UserID, "user1")
	assert.Equal(t, account.Password, "pass1")

	_, err = repo.GetAccount(ctx, "unknown")
	assert.True(t, errors.Is(err, common.ErrNoData))

	accounts, err := repo.ListAccounts(ctx)
	assert.NoErr(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, accounts[0].UserID, "user0")
	assert.Equal(t, accounts[1].UserID, "user1")
}

func TestRepositoryRooms(t *testing.T) {
	ctx, repo := prepareTests(t)

	exists, err := repo.RoomExists(ctx, "kaist")
	assert.NoErr(t, err)
	assert.True(t, !exists)

	assert.NoErr(t, repo.CreateRoom(ctx, "kaist"))
	assert.NoErr(t, repo.CreateRoom(ctx, "general"))
	assert.ErrSpec(t, repo.CreateRoom(ctx, "kaist"), common.ErrRoomExists)

	exists, err = repo.RoomExists(ctx, "kaist")
	assert.NoErr(t, err)
	assert.True(t, exists)

	rooms, err := repo.ListRooms(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, rooms, []model.ChatRoom{{Name: "general"}, {Name: "kaist"}})
}

func TestRepositoryMessages(t *testing.T) {
	ctx, repo := prepareTests(t)

	assert.NoErr(t, repo.CreateRoom(ctx, "kaist"))
	assert.NoErr(t, repo.CreateRoom(ctx, "other"))

	base := time.Unix(1700000000, 0)

	msgs := []model.ChatMessage{
		{Date: base.Add(2 * time.Second), UserID: "user1", Room: "kaist", Message: "second"},
		{Date: base, UserID: "user2", Room: "kaist", Message: "first | with delimiter"},
		{Date: base.Add(time.Second), UserID: "user1", Room: "other", Message: "elsewhere"},
	}
	for _, m := range msgs {
		assert.NoErr(t, repo.SaveMessage(ctx, &m))
	}

	res, err := repo.ListMessages(ctx, "kaist")
	assert.NoErr(t, err)
	assert.Len(t, res, 2)
	assert.Equal(t, res[0].Message, "first | with delimiter")
	assert.Equal(t, res[0].UserID, "user2")
	assert.True(t, res[0].Date.Equal(base))
	assert.Equal(t, res[1].Message, "second")

	res, err = repo.ListMessages(ctx, "empty")
	assert.NoErr(t, err)
	assert.Len(t, res, 0)

	// messages require existing room
	err = repo.SaveMessage(ctx, &model.ChatMessage{Date: base, UserID: "u", Room: "missing", Message: "x"})
	assert.ErrSpec(t, err, common.ErrUnknownRoom)
}

func TestRepositoryHealthCheck(t *testing.T) {
	ctx, repo := prepareTests(t)

	assert.NoErr(t, repo.HealthCheck(ctx))
	assert.NoErr(t, repo.Shutdown(ctx))
	assert.Err(t, repo.HealthCheck(ctx))
}

func prepareTests(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	ctx := context.Background()

	repo, err := NewRepository(filepath.Join(t.TempDir(), "chat.db"))
	assert.NoErr(t, err)
	assert.NoErr(t, repo.Open(ctx))
	assert.NoErr(t, repo.Migrate(ctx))

	t.Cleanup(func() {
		_ = repo.Shutdown(context.Background())
	})

	return ctx, repo
}
