package common

//
// appctx.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
)

//nolint:gochecknoglobals
var ctxUserKey = any("ctxUserKey")

// ContextUser return user id from context.
func ContextUser(ctx context.Context) string {
	suser, ok := ctx.Value(ctxUserKey).(string)
	if ok {
		return suser
	}

	return ""
}

// ContextWithUser create new context with user id.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey, userID)
}

// ------------------------------------------------------

//nolint:gochecknoglobals
var ctxSessionKey = any("ctxSessionKey")

// ContextSession return session id from context.
func ContextSession(ctx context.Context) string {
	value, ok := ctx.Value(ctxSessionKey).(string)
	if ok {
		return value
	}

	return ""
}

// ContextWithSession create context with session id.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sessionID)
}
