package sqlite

//
// sqlite_chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/db"
	"gitlab.com/kabes/go-chat/internal/model"
)

func (r *Repository) SaveMessage(ctx context.Context, msg *model.ChatMessage) error {
	return db.InTransaction(ctx, r.db, func(ctx context.Context) error {
		logger := log.Ctx(ctx)
		logger.Debug().Object("message", msg).Msgf("sqlite.Repository: insert message room=%s", msg.Room)

		dbctx := db.MustCtx(ctx)

		var cnt int
		if err := dbctx.GetContext(ctx, &cnt, "SELECT count(*) FROM rooms WHERE name=?", msg.Room); err != nil {
			return aerr.Wrapf(err, "count rooms failed").WithTag(aerr.InternalError).WithMeta("room", msg.Room)
		} else if cnt == 0 {
			return aerr.Wrapf(common.ErrUnknownRoom, "save message failed")
		}

		_, err := dbctx.ExecContext(ctx,
			"INSERT INTO messages (room, user_id, message, date) VALUES (?, ?, ?, ?)",
			msg.Room, msg.UserID, msg.Message, msg.Date.Unix())
		if err != nil {
			return aerr.Wrapf(err, "insert message failed").WithTag(aerr.InternalError).
				WithMeta("room", msg.Room)
		}

		return nil
	})
}

func (r *Repository) ListMessages(ctx context.Context, room string) ([]model.ChatMessage, error) {
	return db.InConnectionR(ctx, r.db, func(ctx context.Context) ([]model.ChatMessage, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Str(common.LogKeyRoom, room).Msgf("sqlite.Repository: list messages room=%s", room)

		var msgs []MessageDB

		dbctx := db.MustCtx(ctx)

		err := dbctx.SelectContext(ctx, &msgs, `
			SELECT id, room, user_id, message, date
			FROM messages
			WHERE room=?
			ORDER BY date, id`,
			room)
		if err != nil {
			return nil, aerr.Wrapf(err, "select messages failed").WithTag(aerr.InternalError).
				WithMeta("room", room)
		}

		return messagesFromDB(msgs), nil
	})
}

func (r *Repository) CreateRoom(ctx context.Context, name string) error {
	_, err := db.InConnectionR(ctx, r.db, func(ctx context.Context) (any, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Str(common.LogKeyRoom, name).Msgf("sqlite.Repository: insert room room=%s", name)

		dbctx := db.MustCtx(ctx)

		res, err := dbctx.ExecContext(ctx,
			"INSERT INTO rooms (name, created_at) VALUES (?, ?) ON CONFLICT (name) DO NOTHING",
			name, time.Now().UTC())
		if err != nil {
			return nil, aerr.Wrapf(err, "insert room failed").WithTag(aerr.InternalError).WithMeta("room", name)
		}

		if cnt, err := res.RowsAffected(); err != nil {
			return nil, aerr.Wrapf(err, "get affected rows failed").WithTag(aerr.InternalError)
		} else if cnt == 0 {
			return nil, common.ErrRoomExists
		}

		return nil, nil //nolint:nilnil
	})

	return err
}

func (r *Repository) RoomExists(ctx context.Context, name string) (bool, error) {
	return db.InConnectionR(ctx, r.db, func(ctx context.Context) (bool, error) {
		var cnt int

		dbctx := db.MustCtx(ctx)

		err := dbctx.GetContext(ctx, &cnt, "SELECT count(*) FROM rooms WHERE name=?", name)
		if err != nil {
			return false, aerr.Wrapf(err, "count rooms failed").WithTag(aerr.InternalError).WithMeta("room", name)
		}

		return cnt > 0, nil
	})
}

func (r *Repository) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	return db.InConnectionR(ctx, r.db, func(ctx context.Context) ([]model.ChatRoom, error) {
		logger := log.Ctx(ctx)
		logger.Debug().Msg("sqlite.Repository: list rooms")

		var rooms []model.ChatRoom

		dbctx := db.MustCtx(ctx)

		err := dbctx.SelectContext(ctx, &rooms, "SELECT name FROM rooms ORDER BY name")
		if err != nil {
			return nil, aerr.Wrapf(err, "select rooms failed").WithTag(aerr.InternalError)
		}

		return rooms, nil
	})
}
