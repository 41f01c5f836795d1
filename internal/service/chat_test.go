package service

//
// chat_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"testing"
	"time"

	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/common"
)

func TestChatRooms(t *testing.T) {
	ctx, i := prepareTests(t)
	chatSrv := do.MustInvoke[*ChatSrv](i)

	rooms, err := chatSrv.Rooms(ctx)
	assert.NoErr(t, err)
	assert.Len(t, rooms, 0)

	assert.NoErr(t, chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "u", Name: "kaist"}))

	err = chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "u", Name: "kaist"})
	assert.ErrSpec(t, err, common.ErrRoomExists)

	err = chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "u", Name: ""})
	assert.ErrSpec(t, err, common.ErrRoomInfoAbsence)

	err = chatSrv.CreateRoom(ctx, &command.CreateRoomCmd{UserID: "u", Name: "a|b"})
	assert.True(t, aerr.HasTag(err, aerr.ValidationError))

	rooms, err = chatSrv.Rooms(ctx)
	assert.NoErr(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, rooms[0].Name, "kaist")

	exists, err := chatSrv.RoomExists(ctx, "kaist")
	assert.NoErr(t, err)
	assert.True(t, exists)
}

func TestChatMessages(t *testing.T) {
	ctx, i := prepareTests(t)
	prepareTestRoom(ctx, t, i, "kaist")

	chatSrv := do.MustInvoke[*ChatSrv](i)
	notifier := do.MustInvoke[*testNotifier](i)

	now := time.Date(2025, 5, 1, 10, 0, 0, 500, time.UTC)
	chatSrv.now = func() time.Time { return now }

	msg, err := chatSrv.PostMessage(ctx, &command.PostMessageCmd{UserID: "user1", Room: "kaist", Message: "hello"})
	assert.NoErr(t, err)
	assert.Equal(t, msg.Date.Unix(), now.Unix())
	assert.Equal(t, msg.UserID, "user1")

	_, err = chatSrv.PostMessage(ctx, &command.PostMessageCmd{UserID: "user2", Room: "kaist", Message: "world"})
	assert.NoErr(t, err)

	_, err = chatSrv.PostMessage(ctx, &command.PostMessageCmd{UserID: "user1", Room: "unknown", Message: "x"})
	assert.ErrSpec(t, err, common.ErrUnknownRoom)

	_, err = chatSrv.PostMessage(ctx, &command.PostMessageCmd{UserID: "user1", Room: "kaist", Message: " "})
	assert.ErrSpec(t, err, common.ErrInvalidMessage)

	_, err = chatSrv.PostMessage(ctx, &command.PostMessageCmd{UserID: "user1", Room: "", Message: "x"})
	assert.ErrSpec(t, err, common.ErrRoomInfoAbsence)

	msgs, err := chatSrv.Messages(ctx, "kaist")
	assert.NoErr(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, msgs[0].Message, "hello")
	assert.Equal(t, msgs[1].Message, "world")

	_, err = chatSrv.Messages(ctx, "")
	assert.ErrSpec(t, err, common.ErrRoomInfoAbsence)

	published := notifier.published()
	assert.Len(t, published, 2)
	assert.Equal(t, published[1].UserID, "user2")
}
