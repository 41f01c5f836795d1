package common

//
// Common application errors
//
// errors.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"errors"

	"gitlab.com/kabes/go-chat/internal/aerr"
)

var (
	ErrUnauthorized = aerr.NewSimple("password not matched").
			WithUserMsg("Password not matched")
	ErrInvalidSession = aerr.NewSimple("invalid session").
				WithUserMsg("Not a valid session")
)

// Validation errors.
var (
	ErrUnknownUser = aerr.NewSimple("unknown user").
			WithTag(aerr.ValidationError).WithUserMsg("ID not exist")
	ErrAccountInfoAbsence = aerr.NewSimple("missing account information").
				WithTag(aerr.ValidationError).WithUserMsg("Account information absence")
	ErrProhibitedCharInID = aerr.NewSimple("prohibited character in id").
				WithTag(aerr.ValidationError).WithUserMsg("Prohibited character in ID")
	ErrDuplicateID = aerr.NewSimple("duplicated id").
			WithTag(aerr.DataError).WithUserMsg("Duplicated ID")
	ErrAccountWrite = aerr.NewSimple("account write error").
			WithTag(aerr.InternalError).WithUserMsg("Account write error in file DB")
	ErrRoomInfoAbsence = aerr.NewSimple("missing chat room").
				WithTag(aerr.ValidationError).WithUserMsg("Chat room information absence")
	ErrInvalidRoom = aerr.NewSimple("invalid chat room name").
			WithTag(aerr.ValidationError).WithUserMsg("Invalid chat room name")
	ErrInvalidMessage = aerr.NewSimple("invalid chat message").
				WithTag(aerr.ValidationError).WithUserMsg("Invalid chat message")
	ErrUnknownRoom = aerr.NewSimple("unknown chat room").
			WithTag(aerr.NotFoundError).WithUserMsg("Chat room not exist")
	ErrRoomExists = aerr.NewSimple("chat room exists").
			WithTag(aerr.DataError).WithUserMsg("Chat room already exists")
)

// ErrNoData is returned by repositories when requested object not exists.
var ErrNoData = errors.New("no result")
