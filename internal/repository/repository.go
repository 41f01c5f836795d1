// Package repository define storage interfaces used by services.
package repository

//
// repository.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"gitlab.com/kabes/go-chat/internal/model"
)

// ------------------------------------------------------

type AccountRepository interface {
	// GetAccount return account for user id or common.ErrNoData when not exists.
	GetAccount(ctx context.Context, userID string) (*model.Account, error)
	// SaveAccount insert new account; return common.ErrDuplicateID when account exists.
	SaveAccount(ctx context.Context, account *model.Account) error
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

type ChatRepository interface {
	SaveMessage(ctx context.Context, msg *model.ChatMessage) error
	// ListMessages return messages posted in room ordered by date.
	ListMessages(ctx context.Context, room string) ([]model.ChatMessage, error)
	// CreateRoom add new room; return common.ErrRoomExists when room exists.
	CreateRoom(ctx context.Context, name string) error
	RoomExists(ctx context.Context, name string) (bool, error)
	ListRooms(ctx context.Context) ([]model.ChatRoom, error)
}

// Repository is storage backend.
type Repository interface {
	AccountRepository
	ChatRepository

	// Open connect to storage.
	Open(ctx context.Context) error
	// Migrate create or update storage structure.
	Migrate(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
