package filestore

//
// chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

func (r *Repository) SaveMessage(ctx context.Context, msg *model.ChatMessage) error {
	log.Ctx(ctx).Debug().Object("message", msg).Msgf("filestore.Repository: insert message room=%s", msg.Room)

	if strings.ContainsAny(msg.UserID, messageDelimiter+"\n") || strings.ContainsAny(msg.Room, messageDelimiter+"\n") ||
		strings.Contains(msg.Message, "\n") {
		return aerr.ErrStorage.WithMsg("message can not be stored in file")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.rooms, msg.Room) {
		return aerr.Wrapf(common.ErrUnknownRoom, "save message failed")
	}

	if err := r.appendLine(ChatMessagesFile, formatMessageLine(msg)); err != nil {
		return err
	}

	r.messages[msg.Room] = append(r.messages[msg.Room], *msg)

	return nil
}

func (r *Repository) ListMessages(ctx context.Context, room string) ([]model.ChatMessage, error) {
	log.Ctx(ctx).Debug().Str(common.LogKeyRoom, room).Msgf("filestore.Repository: list messages room=%s", room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.messages[room]), nil
}

func (r *Repository) CreateRoom(ctx context.Context, name string) error {
	log.Ctx(ctx).Debug().Str(common.LogKeyRoom, name).Msgf("filestore.Repository: insert room room=%s", name)

	if name == "" || strings.ContainsAny(name, "\n"+messageDelimiter) {
		return aerr.ErrStorage.WithMsg("room name can not be stored in file")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.rooms, name) {
		return common.ErrRoomExists
	}

	if err := r.appendLine(ChatRoomsFile, name); err != nil {
		return err
	}

	r.rooms = append(r.rooms, name)

	return nil
}

func (r *Repository) RoomExists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Contains(r.rooms, name), nil
}

// ListRooms return rooms in creation order.
func (r *Repository) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	log.Ctx(ctx).Debug().Msg("filestore.Repository: list rooms")

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]model.ChatRoom, len(r.rooms))
	for i, name := range r.rooms {
		res[i] = model.ChatRoom{Name: name}
	}

	return res, nil
}
