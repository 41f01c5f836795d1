package api

//
// chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/command"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/hub"
	"gitlab.com/kabes/go-chat/internal/model"
	"gitlab.com/kabes/go-chat/internal/server/srvsupport"
	"gitlab.com/kabes/go-chat/internal/service"
	"gitlab.com/kabes/go-chat/internal/session"
)

// chatResource handle chat rooms and messages. All endpoints require session.
type chatResource struct {
	chatSrv *service.ChatSrv
	hub     *hub.Hub
}

func newChatResource(i do.Injector) (chatResource, error) {
	h := do.MustInvoke[*hub.Hub](i)
	// streams live only as long as session used to open them
	h.BindSessions(do.MustInvoke[*session.Manager](i))

	return chatResource{
		chatSrv: do.MustInvoke[*service.ChatSrv](i),
		hub:     h,
	}, nil
}

func (cr chatResource) Routes(r chi.Router) {
	listRooms := srvsupport.WrapNamed(cr.listRooms, "api_chat_rooms")
	createRoom := srvsupport.WrapNamed(cr.createRoom, "api_chat_room_create")
	postMessage := srvsupport.WrapNamed(cr.postMessage, "api_chat_message_post")

	r.Get(`/chatroom`, listRooms)
	r.Get(`/chatroomlist`, listRooms)
	r.Post(`/chatroom`, createRoom)
	r.Post(`/chat/room`, createRoom)
	r.Get(`/chatmessage`, srvsupport.WrapNamed(cr.listMessages, "api_chat_messages"))
	r.Post(`/chatmessage`, postMessage)
	r.Post(`/chat/message`, postMessage)
	r.Get(`/chatmessage/ws`, srvsupport.WrapNamed(cr.streamMessages, "api_chat_messages_ws"))
}

func (cr chatResource) listRooms(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	rooms, err := cr.chatSrv.Rooms(ctx)
	if err != nil {
		logger.Error().Err(err).Msgf("ChatResource: list rooms error=%q", err)
		srvsupport.CheckAndWriteError(w, r, err)

		return
	}

	if rooms == nil {
		rooms = []model.ChatRoom{}
	}

	srvsupport.RenderJSON(w, r, rooms)
}

func (cr chatResource) createRoom(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	cmd := command.CreateRoomCmd{
		UserID: common.ContextUser(ctx),
		Name:   param(r, paramRoom),
	}

	err := cr.chatSrv.CreateRoom(ctx, &cmd)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, common.ErrRoomExists):
		srvsupport.WriteError(w, r, http.StatusConflict, aerr.GetUserMessage(err))
	case aerr.HasTag(err, aerr.ValidationError):
		srvsupport.WriteError(w, r, http.StatusBadRequest, aerr.GetUserMessage(err))
	default:
		logger.Error().Err(err).Str(common.LogKeyRoom, cmd.Name).Msgf("ChatResource: create room error=%q", err)
		srvsupport.CheckAndWriteError(w, r, err)
	}
}

func (cr chatResource) listMessages(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	room := param(r, paramRoom)
	if room == "" {
		srvsupport.WriteError(w, r, http.StatusForbidden, aerr.GetUserMessage(common.ErrRoomInfoAbsence))

		return
	}

	msgs, err := cr.chatSrv.Messages(ctx, room)
	if err != nil {
		logger.Error().Err(err).Str(common.LogKeyRoom, room).Msgf("ChatResource: list messages error=%q", err)
		srvsupport.CheckAndWriteError(w, r, err)

		return
	}

	if msgs == nil {
		msgs = []model.ChatMessage{}
	}

	srvsupport.RenderJSON(w, r, msgs)
}

func (cr chatResource) postMessage(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	cmd := command.PostMessageCmd{
		UserID:  common.ContextUser(ctx),
		Room:    param(r, paramRoom),
		Message: r.FormValue(paramMessage),
	}

	msg, err := cr.chatSrv.PostMessage(ctx, &cmd)

	switch {
	case err == nil:
		srvsupport.RenderJSON(w, r, msg)
	case aerr.IsNotFound(err):
		srvsupport.WriteError(w, r, http.StatusNotFound, aerr.GetUserMessage(err))
	case aerr.HasTag(err, aerr.ValidationError):
		srvsupport.WriteError(w, r, http.StatusBadRequest, aerr.GetUserMessage(err))
	default:
		logger.Error().Err(err).Str(common.LogKeyRoom, cmd.Room).Msgf("ChatResource: post message error=%q", err)
		srvsupport.CheckAndWriteError(w, r, err)
	}
}

func (cr chatResource) streamMessages(ctx context.Context, w http.ResponseWriter, r *http.Request,
	logger *zerolog.Logger,
) {
	room := param(r, paramRoom)
	if room == "" {
		srvsupport.WriteError(w, r, http.StatusForbidden, aerr.GetUserMessage(common.ErrRoomInfoAbsence))

		return
	}

	exists, err := cr.chatSrv.RoomExists(ctx, room)
	if err != nil {
		srvsupport.CheckAndWriteError(w, r, err)

		return
	} else if !exists {
		srvsupport.WriteError(w, r, http.StatusNotFound, aerr.GetUserMessage(common.ErrUnknownRoom))

		return
	}

	err = cr.hub.Serve(w, r, room, common.ContextUser(ctx), common.ContextSession(ctx))
	if errors.Is(err, hub.ErrHubStopped) {
		srvsupport.WriteError(w, r, http.StatusServiceUnavailable, "")
	} else if err != nil {
		// upgrader already wrote response on handshake errors
		logger.Info().Err(err).Str(common.LogKeyRoom, room).Str(common.LogKeySessionID, common.ContextSession(ctx)).
			Msgf("ChatResource: websocket serve error=%q", err)
	}
}
