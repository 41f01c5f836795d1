//
// chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
	"gitlab.com/kabes/go-chat/internal/repository"
)

// MessageNotifier receive every stored message.
type MessageNotifier interface {
	Publish(msg model.ChatMessage)
}

type ChatSrv struct {
	chatRepo repository.ChatRepository
	notifier MessageNotifier
	now      func() time.Time
}

func NewChatSrv(i do.Injector) (*ChatSrv, error) {
	repo := do.MustInvoke[repository.Repository](i)

	// notifier is optional; without it messages are only stored
	notifier, err := do.InvokeAs[MessageNotifier](i)
	if err != nil {
		log.Logger.Debug().Msg("ChatSrv: no message notifier available")
	}

	return &ChatSrv{repo, notifier, time.Now}, nil
}

// PostMessage store message in existing room and notify listeners.
func (c *ChatSrv) PostMessage(ctx context.Context, cmd *command.PostMessageCmd) (model.ChatMessage, error) {
	if cmd == nil {
		panic("cmd is nil")
	}

	if err := cmd.Validate(); err != nil {
		return model.ChatMessage{}, aerr.Wrapf(err, "validate message failed")
	}

	exists, err := c.chatRepo.RoomExists(ctx, cmd.Room)
	if err != nil {
		return model.ChatMessage{}, aerr.ApplyFor(ErrRepositoryError, err)
	} else if !exists {
		return model.ChatMessage{}, common.ErrUnknownRoom
	}

	msg := model.ChatMessage{
		Date:    cmd.Date,
		UserID:  cmd.UserID,
		Room:    cmd.Room,
		Message: cmd.Message,
	}

	if msg.Date.IsZero() {
		msg.Date = c.now()
	}

	msg.Date = msg.Date.Truncate(time.Second)

	if err := c.chatRepo.SaveMessage(ctx, &msg); err != nil {
		return model.ChatMessage{}, aerr.ApplyFor(ErrRepositoryError, err)
	}

	log.Ctx(ctx).Debug().Object("message", &msg).Msg("ChatSrv: message stored")
	common.TraceLazyPrintf(ctx, "chat: message stored room=%s", msg.Room)

	if c.notifier != nil {
		c.notifier.Publish(msg)
	}

	return msg, nil
}

// Messages return all messages posted in room.
func (c *ChatSrv) Messages(ctx context.Context, room string) ([]model.ChatMessage, error) {
	if room == "" {
		return nil, common.ErrRoomInfoAbsence
	}

	msgs, err := c.chatRepo.ListMessages(ctx, room)
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return msgs, nil
}

func (c *ChatSrv) CreateRoom(ctx context.Context, cmd *command.CreateRoomCmd) error {
	if cmd == nil {
		panic("cmd is nil")
	}

	if err := cmd.Validate(); err != nil {
		return aerr.Wrapf(err, "validate room failed")
	}

	err := c.chatRepo.CreateRoom(ctx, cmd.Name)

	switch {
	case err == nil:
		log.Ctx(ctx).Info().Str(common.LogKeyRoom, cmd.Name).Str(common.LogKeyUserID, cmd.UserID).
			Msgf("ChatSrv: room created room=%s", cmd.Name)

		return nil
	case errors.Is(err, common.ErrRoomExists):
		return err
	default:
		return aerr.ApplyFor(ErrRepositoryError, err)
	}
}

// RoomExists check is room created.
func (c *ChatSrv) RoomExists(ctx context.Context, room string) (bool, error) {
	exists, err := c.chatRepo.RoomExists(ctx, room)
	if err != nil {
		return false, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return exists, nil
}

func (c *ChatSrv) Rooms(ctx context.Context) ([]model.ChatRoom, error) {
	rooms, err := c.chatRepo.ListRooms(ctx)
	if err != nil {
		return nil, aerr.ApplyFor(ErrRepositoryError, err)
	}

	return rooms, nil
}
