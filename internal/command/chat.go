package command

//
// chat.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"strings"
	"time"
	"unicode"

	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
)

const maxRoomNameLen = 64

//---------------------------------------------------------------------

// PostMessageCmd is message posted by user into room.
type PostMessageCmd struct {
	UserID  string
	Room    string
	Message string
	Date    time.Time
}

func (p *PostMessageCmd) Validate() error {
	if p.UserID == "" {
		return aerr.ErrValidation.WithUserMsg("user id can't be empty")
	}

	if p.Room == "" {
		return common.ErrRoomInfoAbsence
	}

	if strings.TrimSpace(p.Message) == "" {
		return common.ErrInvalidMessage
	}

	if strings.ContainsAny(p.Message, "\r\n") {
		return aerr.Wrapf(common.ErrInvalidMessage, "multi-line message")
	}

	return nil
}

//---------------------------------------------------------------------

// CreateRoomCmd define new chat room.
type CreateRoomCmd struct {
	UserID string
	Name   string
}

func (c *CreateRoomCmd) Validate() error {
	if c.Name == "" {
		return common.ErrRoomInfoAbsence
	}

	if len(c.Name) > maxRoomNameLen || strings.ContainsAny(c.Name, "|,") ||
		strings.ContainsFunc(c.Name, unicode.IsControl) || strings.TrimSpace(c.Name) != c.Name {
		return common.ErrInvalidRoom
	}

	return nil
}
