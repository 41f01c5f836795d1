package model

//
// chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ChatMessage is one message posted in chat room.
type ChatMessage struct {
	Date    time.Time
	UserID  string
	Room    string
	Message string
}

type chatMessageJSON struct {
	Date    int64  `json:"date"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Room    string `json:"room"`
}

// MarshalJSON encode message with date as unix timestamp.
func (c ChatMessage) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(chatMessageJSON{
		Date:    c.Date.Unix(),
		UserID:  c.UserID,
		Message: c.Message,
		Room:    c.Room,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat message error: %w", err)
	}

	return data, nil
}

func (c *ChatMessage) UnmarshalJSON(data []byte) error {
	var msg chatMessageJSON
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal chat message error: %w", err)
	}

	c.Date = time.Unix(msg.Date, 0)
	c.UserID = msg.UserID
	c.Message = msg.Message
	c.Room = msg.Room

	return nil
}

func (c *ChatMessage) MarshalZerologObject(event *zerolog.Event) {
	event.Time("date", c.Date).
		Str("user_id", c.UserID).
		Str("room", c.Room).
		Int("message_len", len(c.Message))
}

// String format message for console output.
func (c *ChatMessage) String() string {
	return fmt.Sprintf("[%s] %s: %s", c.Date.Local().Format(time.DateTime), c.UserID, c.Message)
}

//-------------------------------------------------------------

// ChatRoom is named room where messages are posted.
type ChatRoom struct {
	Name string `db:"name" json:"room"`
}

func (c *ChatRoom) MarshalZerologObject(event *zerolog.Event) {
	event.Str("room", c.Name)
}
