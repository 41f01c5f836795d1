package client

//
// client_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/api"
	"gitlab.com/kabes/go-chat/internal/assert"
	"gitlab.com/kabes/go-chat/internal/hub"
	"gitlab.com/kabes/go-chat/internal/infra/filestore"
	"gitlab.com/kabes/go-chat/internal/model"
	"gitlab.com/kabes/go-chat/internal/repository"
	"gitlab.com/kabes/go-chat/internal/service"
	"gitlab.com/kabes/go-chat/internal/session"
)

type scriptedView struct {
	mu       sync.Mutex
	inputs   []string
	messages []string
	rooms    [][]model.ChatRoom
	shown    [][]model.ChatMessage
}

func newScriptedView(inputs ...string) *scriptedView {
	return &scriptedView{inputs: inputs}
}

func (s *scriptedView) Input(_ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inputs) == 0 {
		return "", io.EOF
	}

	line := s.inputs[0]
	s.inputs = s.inputs[1:]

	return line, nil
}

func (s *scriptedView) Password(prompt string) (string, error) {
	return s.Input(prompt)
}

func (s *scriptedView) Message(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (s *scriptedView) ShowRooms(rooms []model.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms = append(s.rooms, rooms)
}

func (s *scriptedView) ShowMessages(_ string, msgs []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shown = append(s.shown, msgs)
}

func (s *scriptedView) hasMessage(msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Contains(s.messages, msg)
}

//-------------------------------------------------------------

func TestSignUpChecks(t *testing.T) {
	srv, _ := prepareTests(t)

	view := newScriptedView(
		"signup", "user1", "password1", "password2",
		"signup", "user1", "short", "short",
		"signup", "user1", "password1", "password1",
		"signup", "user1", "password1", "password1",
		"unknown",
		"exit",
	)

	c := newTestClient(t, srv, view)
	assert.NoErr(t, c.Run(context.Background()))

	assert.True(t, view.hasMessage("Password not matching."))
	assert.True(t, view.hasMessage("Password must be at least 8 characters."))
	assert.True(t, view.hasMessage("Success to signup."))
	assert.True(t, view.hasMessage("HTTP error response 403: Duplicated ID"))
	assert.True(t, view.hasMessage("unknown not understood."))
}

func TestLoginRoomsAndLogout(t *testing.T) {
	srv, _ := prepareTests(t)
	signUp(t, srv, "user1", "password1")

	view := newScriptedView(
		"login", "user1", "bad",
		"login", "user1", "password1",
		"room_create", "kaist",
		"room_create", "kaist",
		"room_list",
		"join", "missing",
		"logout",
		"exit",
	)

	c := newTestClient(t, srv, view)
	assert.NoErr(t, c.Run(context.Background()))

	assert.True(t, view.hasMessage("HTTP error response 403: Password not matched"))
	assert.True(t, view.hasMessage("Success to login."))
	assert.True(t, view.hasMessage("Create chat room: kaist"))
	assert.True(t, view.hasMessage("Given chat room: kaist already exists."))
	assert.True(t, view.hasMessage("The chat room not exist: missing"))
	assert.True(t, view.hasMessage("Logout succeeds."))
	assert.Len(t, view.rooms, 1)
	assert.Equal(t, view.rooms[0], []model.ChatRoom{{Name: "kaist"}})
	assert.Equal(t, c.state, stateBeforeLogin)
	assert.Equal(t, c.sessionID, "")
}

func TestChatRoom(t *testing.T) {
	srv, _ := prepareTests(t)
	signUp(t, srv, "user1", "password1")

	view := newScriptedView(
		"login", "user1", "password1",
		"room_create", "kaist",
		"join", "kaist",
		"hello",
		"",
		"second message",
		"quit",
		"exit",
	)

	c := newTestClient(t, srv, view)
	assert.NoErr(t, c.Run(context.Background()))

	assert.True(t, view.hasMessage("Success to join: kaist"))
	assert.True(t, view.hasMessage("Quit chat room"))

	view.mu.Lock()
	defer view.mu.Unlock()

	assert.True(t, len(view.shown) >= 2)

	last := view.shown[len(view.shown)-1]
	assert.Len(t, last, 2)
	assert.Equal(t, last[0].Message, "hello")
	assert.Equal(t, last[1].Message, "second message")
	assert.Equal(t, last[1].UserID, "user1")
	assert.Equal(t, c.state, stateAfterLogin)
}

func TestSessionExpiredClearUser(t *testing.T) {
	srv, i := prepareTests(t)
	signUp(t, srv, "user1", "password1")

	view := newScriptedView(
		"login", "user1", "password1",
	)

	c := newTestClient(t, srv, view)
	assert.NoErr(t, c.Run(context.Background()))
	assert.Equal(t, c.state, stateAfterLogin)

	// session removed on server side
	assert.True(t, do.MustInvoke[*session.Manager](i).DeleteSession(c.sessionID))

	view.inputs = []string{"room_list", "exit"}
	assert.NoErr(t, c.Run(context.Background()))

	assert.True(t, view.hasMessage("The session is invalid."))
	assert.Equal(t, c.state, stateBeforeLogin)
	assert.Equal(t, c.userID, "")
}

func TestRepeatedMessageShown(t *testing.T) {
	srv, _ := prepareTests(t)
	signUp(t, srv, "user1", "password1")

	view := newScriptedView(
		"login", "user1", "password1",
		"room_create", "kaist",
		"join", "kaist",
		"ping",
		"ping",
		"quit",
		"exit",
	)

	c := newTestClient(t, srv, view)
	assert.NoErr(t, c.Run(context.Background()))

	view.mu.Lock()
	defer view.mu.Unlock()

	last := view.shown[len(view.shown)-1]
	assert.Len(t, last, 2)
	assert.Equal(t, last[0].Message, "ping")
	assert.Equal(t, last[1].Message, "ping")
}

func TestNewMessagesCount(t *testing.T) {
	assert.Equal(t, newMessagesCount(0, 3, 5), 3)
	assert.Equal(t, newMessagesCount(0, 7, 5), 5)
	assert.Equal(t, newMessagesCount(3, 3, 5), 0)
	assert.Equal(t, newMessagesCount(3, 5, 5), 2)
	assert.Equal(t, newMessagesCount(1, 7, 5), 5)
	assert.Equal(t, newMessagesCount(6, 2, 5), 0)

	msg := func(i int) model.ChatMessage {
		return model.ChatMessage{UserID: "u", Room: "r", Message: fmt.Sprintf("m%d", i)}
	}

	all := []model.ChatMessage{msg(0), msg(1), msg(2), msg(3), msg(4), msg(5), msg(6)}

	res := lastMessages(all[:4], all[4:], 5)
	assert.Len(t, res, 5)
	assert.Equal(t, res[0].Message, "m2")
	assert.Equal(t, res[4].Message, "m6")
}

func TestRequester(t *testing.T) {
	srv, _ := prepareTests(t)

	_, err := NewRequester("not an url")
	assert.Err(t, err)

	req, err := NewRequester(srv.URL + "/")
	assert.NoErr(t, err)

	_, err = req.Do(context.Background(), http.MethodPost, "account", url.Values{"id": {"user1"}})
	assert.True(t, IsStatus(err, http.StatusForbidden))

	var se *StatusError

	assert.True(t, errors.As(err, &se))
	assert.Equal(t, se.Message, "Account information absence")

	_, err = req.Do(context.Background(), http.MethodGet, "chatroom", nil)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

//-------------------------------------------------------------

func prepareTests(t *testing.T) (*httptest.Server, do.Injector) {
	t.Helper()

	ctx := context.Background()

	repo, err := filestore.NewRepository(t.TempDir())
	assert.NoErr(t, err)
	assert.NoErr(t, repo.Open(ctx))

	mgr, err := session.NewManager(session.Config{AliveTime: time.Minute, SweepInterval: time.Second})
	assert.NoErr(t, err)

	h := hub.New(nil)
	h.Start()

	i := do.New(service.Package, api.Package)
	do.ProvideValue[repository.Repository](i, repo)
	do.ProvideValue(i, mgr)
	do.ProvideValue(i, h)

	chatAPI := do.MustInvoke[api.API](i)
	srv := httptest.NewServer(chatAPI.Routes())

	t.Cleanup(func() {
		srv.Close()

		_ = i.Shutdown()
	})

	return srv, i
}

func newTestClient(t *testing.T, srv *httptest.Server, view View) *ChatClient {
	t.Helper()

	req, err := NewRequester(srv.URL)
	assert.NoErr(t, err)

	return NewChatClient(req, view, WithPollInterval(50*time.Millisecond))
}

func signUp(t *testing.T, srv *httptest.Server, userID, password string) {
	t.Helper()

	req, err := NewRequester(srv.URL)
	assert.NoErr(t, err)

	_, err = req.Do(context.Background(), http.MethodPost, "account", url.Values{"id": {userID}, "pwd": {password}})
	assert.NoErr(t, err)
}
