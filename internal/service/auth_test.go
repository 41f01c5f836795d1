package service

//
// auth_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"testing"

	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/session"
)

func TestAuthLoginLogout(t *testing.T) {
	ctx, i := prepareTests(t)
	prepareTestAccount(ctx, t, i, "user1")

	authSrv := do.MustInvoke[*AuthSrv](i)
	mgr := do.MustInvoke[*session.Manager](i)

	_, err := authSrv.Login(ctx, "user1", "bad")
	assert.ErrSpec(t, err, common.ErrUnauthorized)

	_, err = authSrv.Login(ctx, "nobody", "bad")
	assert.ErrSpec(t, err, common.ErrUnknownUser)
	assert.Equal(t, mgr.Count(), 0)

	sess, err := authSrv.Login(ctx, "user1", "user1123")
	assert.NoErr(t, err)
	assert.Equal(t, len(sess.ID), session.IDLength)
	assert.Equal(t, sess.UserID, "user1")

	// second login reuse session
	sess2, err := authSrv.Login(ctx, "user1", "user1123")
	assert.NoErr(t, err)
	assert.Equal(t, sess2.ID, sess.ID)

	userID, ok := authSrv.Authorize(ctx, sess.ID)
	assert.True(t, ok)
	assert.Equal(t, userID, "user1")

	assert.True(t, authSrv.Logout(ctx, sess.ID))
	assert.True(t, !authSrv.Logout(ctx, sess.ID))

	_, ok = authSrv.Authorize(ctx, sess.ID)
	assert.True(t, !ok)
}

func TestAuthAuthorizeInvalid(t *testing.T) {
	ctx, i := prepareTests(t)
	authSrv := do.MustInvoke[*AuthSrv](i)

	for _, sid := range []string{"", "short", "0123456789abcdefghijABCDEFGHIJ!!"} {
		_, ok := authSrv.Authorize(ctx, sid)
		assert.True(t, !ok)
	}
}
