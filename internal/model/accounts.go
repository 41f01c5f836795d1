package model

//
// accounts.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"github.com/rs/zerolog"
)

// Account is registered chat user. Password keep hashed secret.
type Account struct {
	UserID   string `db:"user_id"`
	Password string `db:"password"`
}

func (a *Account) MarshalZerologObject(event *zerolog.Event) {
	event.Str("user_id", a.UserID)
}
