package filestore

//
// filestore_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

func TestParseAccountLine(t *testing.T) {
	tests := []struct {
		line   string
		id     string
		pwd    string
		experr bool
	}{
		{"user,pass", "user", "pass", false},
		{",pass", "", "", true},
		{"user,", "", "", true},
		{"userpass", "", "", true},
		{"user,pa,ss", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			id, pwd, err := parseAccountLine(tt.line)
			if tt.experr {
				assert.ErrSpec(t, err, ErrParse)
			} else {
				assert.NoErr(t, err)
				assert.Equal(t, id, tt.id)
				assert.Equal(t, pwd, tt.pwd)
			}
		})
	}
}

func TestParseMessageLine(t *testing.T) {
	msg, err := parseMessageLine("1700000000|user|kaist|hello | world")
	assert.NoErr(t, err)
	assert.Equal(t, msg.UserID, "user")
	assert.Equal(t, msg.Room, "kaist")
	assert.Equal(t, msg.Message, "hello | world")
	assert.Equal(t, msg.Date.Unix(), int64(1700000000))

	for _, line := range []string{
		"|user|kaist|msg",
		"1700000000||kaist|msg",
		"1700000000|user||msg",
		"1700000000|user|kaist|",
		"1700000000|user|kaist",
		"abc|user|kaist|msg",
	} {
		_, err := parseMessageLine(line)
		assert.Err(t, err)
	}
}

func TestRepositoryPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo := openRepo(t, dir)

	assert.NoErr(t, repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "secret1"}))
	assert.ErrSpec(t, repo.SaveAccount(ctx, &model.Account{UserID: "user1", Password: "x"}), common.ErrDuplicateID)
	assert.NoErr(t, repo.CreateRoom(ctx, "kaist"))
	assert.ErrSpec(t, repo.CreateRoom(ctx, "kaist"), common.ErrRoomExists)
	assert.NoErr(t, repo.SaveMessage(ctx, &model.ChatMessage{
		Date: time.Unix(1700000000, 0), UserID: "user1", Room: "kaist", Message: "a|b",
	}))

	// reload from files
	repo = openRepo(t, dir)

	account, err := repo.GetAccount(ctx, "user1")
	assert.NoErr(t, err)
	assert.Equal(t, account.Password, "secret1")

	_, err = repo.GetAccount(ctx, "user2")
	assert.True(t, errors.Is(err, common.ErrNoData))

	rooms, err := repo.ListRooms(ctx)
	assert.NoErr(t, err)
	assert.Equal(t, rooms, []model.ChatRoom{{Name: "kaist"}})

	msgs, err := repo.ListMessages(ctx, "kaist")
	assert.NoErr(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, msgs[0].Message, "a|b")

	data, err := os.ReadFile(filepath.Join(dir, ChatMessagesFile))
	assert.NoErr(t, err)
	assert.Equal(t, string(data), "1700000000|user1|kaist|a|b\n")
}

func TestRepositoryMessageUnknownRoom(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, t.TempDir())

	err := repo.SaveMessage(ctx, &model.ChatMessage{Date: time.Now(), UserID: "u", Room: "none", Message: "m"})
	assert.ErrSpec(t, err, common.ErrUnknownRoom)
}

func TestRepositoryAccountWithDelimiter(t *testing.T) {
	ctx := context.Background()
	repo := openRepo(t, t.TempDir())

	err := repo.SaveAccount(ctx, &model.Account{UserID: "a,b", Password: "pass"})
	assert.ErrSpec(t, err, common.ErrAccountWrite)
}

func TestRepositoryOpenInvalidFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoErr(t, os.WriteFile(filepath.Join(dir, AccountsFile), []byte("user,pass\nbroken\n"), 0o600))

	repo, err := NewRepository(dir)
	assert.NoErr(t, err)
	assert.ErrSpec(t, repo.Open(context.Background()), ErrParse)
}

func TestRepositoryOpenDuplicatedRoom(t *testing.T) {
	dir := t.TempDir()
	assert.NoErr(t, os.WriteFile(filepath.Join(dir, ChatRoomsFile), []byte("kaist\nkaist\n"), 0o600))

	repo, err := NewRepository(dir)
	assert.NoErr(t, err)
	assert.Err(t, repo.Open(context.Background()))
}

func openRepo(t *testing.T, dir string) *Repository {
	t.Helper()

	repo, err := NewRepository(dir)
	assert.NoErr(t, err)
	assert.NoErr(t, repo.Open(context.Background()))
	assert.NoErr(t, repo.HealthCheck(context.Background()))

	return repo
}
