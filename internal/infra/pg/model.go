package pg

//
// model.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"time"

	"gitlab.com/kabes/go-chat/internal/model"
)

type MessageDB struct {
	ID      int64  `db:"id"`
	Room    string `db:"room"`
	UserID  string `db:"user_id"`
	Message string `db:"message"`
	Date    int64  `db:"date"`
}

func (m *MessageDB) toModel() model.ChatMessage {
	return model.ChatMessage{
		Date:    time.Unix(m.Date, 0),
		UserID:  m.UserID,
		Room:    m.Room,
		Message: m.Message,
	}
}

func messagesFromDB(msgs []MessageDB) []model.ChatMessage {
	res := make([]model.ChatMessage, len(msgs))
	for i, m := range msgs {
		res[i] = m.toModel()
	}

	return res
}
