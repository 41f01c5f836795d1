package client

//
// room.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/model"
)

// chatRoom show last messages posted in room and send messages entered by user.
type chatRoom struct {
	client *ChatClient
	name   string

	mu        sync.Mutex
	displayed []model.ChatMessage
	fetched   int // length of longest room history received
	expired   bool
}

func newChatRoom(client *ChatClient, name string) *chatRoom {
	return &chatRoom{
		client: client,
		name:   name,
	}
}

// Run start polling server for messages and process user input until "quit".
func (r *chatRoom) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup

	wg.Go(func() { r.poll(ctx) })

	defer func() {
		cancel()
		wg.Wait()
	}()

	r.refresh(ctx)

	view := r.client.view

	for {
		view.Message("You are in [%s]. Enter quit to leave the chat room.", r.name)

		msg, err := view.Input("Input chat message: ")
		if err != nil {
			return err
		}

		if r.isExpired() {
			return aerr.Wrapf(ErrSessionExpired, "session expired while in room")
		}

		switch msg {
		case "quit":
			view.Message("Quit chat room")

			return nil
		case "":
			continue
		}

		if err := r.client.postMessage(ctx, r.name, msg); err != nil {
			if errors.Is(err, ErrSessionExpired) {
				return err
			}

			r.client.showError(err)

			continue
		}

		r.refresh(ctx)
	}
}

func (r *chatRoom) poll(ctx context.Context) {
	logger := log.Ctx(ctx)

	ticker := time.NewTicker(r.client.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !r.refresh(ctx) {
			logger.Debug().Str("room", r.name).Msg("ChatRoom: polling stopped")

			return
		}
	}
}

// refresh load messages from server and show them when something new arrived.
// Return false when polling should stop.
func (r *chatRoom) refresh(ctx context.Context) bool {
	msgs, err := r.client.messages(ctx, r.name)

	switch {
	case ctx.Err() != nil:
		return false
	case errors.Is(err, ErrSessionExpired):
		r.mu.Lock()
		r.expired = true
		r.mu.Unlock()

		r.client.view.Message("The session is invalid. Enter anything to leave the chat room.")

		return false
	case err != nil:
		log.Ctx(ctx).Error().Err(err).Str("room", r.name).Msg("ChatRoom: fail to get chat messages")

		return true
	}

	r.mu.Lock()

	newCount := newMessagesCount(r.fetched, len(msgs), MaxDisplayMessages)
	if newCount > 0 {
		r.displayed = lastMessages(r.displayed, msgs[len(msgs)-newCount:], MaxDisplayMessages)
		r.fetched = len(msgs)
	}

	displayed := append([]model.ChatMessage(nil), r.displayed...)

	r.mu.Unlock()

	if newCount > 0 {
		r.client.view.ShowMessages(r.name, displayed)
	}

	return true
}

func (r *chatRoom) isExpired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.expired
}

//-------------------------------------------------------------

// newMessagesCount return number of messages at end of room history of
// `total` messages that were not received when history had `fetched`
// messages; result is limited to limit. Messages are only appended to room so
// shorter history comes from response older than last processed one.
func newMessagesCount(fetched, total, limit int) int {
	if total <= fetched {
		return 0
	}

	return min(total-fetched, limit)
}

// lastMessages append added to displayed and keep only last limit messages.
func lastMessages(displayed, added []model.ChatMessage, limit int) []model.ChatMessage {
	res := append(append([]model.ChatMessage(nil), displayed...), added...)
	if len(res) > limit {
		res = res[len(res)-limit:]
	}

	return res
}
