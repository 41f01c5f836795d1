package client

//
// client.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/model"
)

const (
	MinPasswordLength   = 8
	DefaultPollInterval = time.Second
	MaxDisplayMessages  = 5
)

// ErrSessionExpired is returned when server reject session.
var ErrSessionExpired = aerr.NewSimple("session expired").WithUserMsg("The session is invalid.")

type state int

const (
	stateBeforeLogin state = iota
	stateAfterLogin
	stateInChatRoom
)

func (s state) String() string {
	switch s {
	case stateBeforeLogin:
		return "before login"
	case stateAfterLogin:
		return "after login"
	case stateInChatRoom:
		return "in chat room"
	}

	return "unknown"
}

//-------------------------------------------------------------

type Option func(*ChatClient)

func WithPollInterval(interval time.Duration) Option {
	return func(c *ChatClient) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// ChatClient is interactive chat client.
type ChatClient struct {
	requester    *Requester
	view         View
	pollInterval time.Duration

	state     state
	userID    string
	sessionID string
	room      string
}

func NewChatClient(requester *Requester, view View, opts ...Option) *ChatClient {
	c := &ChatClient{
		requester:    requester,
		view:         view,
		pollInterval: DefaultPollInterval,
		state:        stateBeforeLogin,
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Run process user commands until exit or end of input.
func (c *ChatClient) Run(ctx context.Context) error {
	logger := log.Ctx(ctx)

	for {
		var (
			cont bool
			err  error
		)

		switch c.state {
		case stateBeforeLogin:
			cont, err = c.beforeLogin(ctx)
		case stateAfterLogin:
			cont, err = c.afterLogin(ctx)
		case stateInChatRoom:
			err = c.inChatRoom(ctx)
			cont = true
		}

		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		case !cont:
			return nil
		case ctx.Err() != nil:
			return nil
		}

		logger.Debug().Str("state", c.state.String()).Msg("ChatClient: state")
	}
}

func (c *ChatClient) beforeLogin(ctx context.Context) (bool, error) {
	method, err := c.view.Input("Enter method name (login, signup, exit): ")
	if err != nil {
		return false, err
	}

	switch method {
	case "signup":
		return true, c.signUp(ctx)
	case "login":
		return true, c.login(ctx)
	case "exit":
		return false, nil
	case "":
	default:
		c.view.Message("%s not understood.", method)
	}

	return true, nil
}

func (c *ChatClient) afterLogin(ctx context.Context) (bool, error) {
	method, err := c.view.Input("Enter method name (join, room_list, room_create, logout, exit): ")
	if err != nil {
		return false, err
	}

	switch method {
	case "room_list":
		err = c.showRooms(ctx)
	case "join":
		err = c.join(ctx)
	case "room_create":
		err = c.createRoom(ctx)
	case "logout":
		c.logout(ctx)
	case "exit":
		return false, nil
	case "":
	default:
		c.view.Message("%s not understood.", method)
	}

	return true, c.handleError(err)
}

func (c *ChatClient) inChatRoom(ctx context.Context) error {
	room := newChatRoom(c, c.room)

	err := room.Run(ctx)

	c.room = ""
	c.state = stateAfterLogin

	return c.handleError(err)
}

//-------------------------------------------------------------

func (c *ChatClient) signUp(ctx context.Context) error {
	id, err := c.view.Input("Enter id: ")
	if err != nil {
		return err
	}

	password, err := c.view.Password("Enter password: ")
	if err != nil {
		return err
	}

	passwordAgain, err := c.view.Password("Enter the password once more: ")
	if err != nil {
		return err
	}

	if password != passwordAgain {
		c.view.Message("Password not matching.")

		return nil
	}

	if len(password) < MinPasswordLength {
		c.view.Message("Password must be at least %d characters.", MinPasswordLength)

		return nil
	}

	if _, err := c.requester.Do(ctx, http.MethodPost, "account", url.Values{"id": {id}, "pwd": {password}}); err != nil {
		c.showError(err)

		return nil
	}

	c.view.Message("Success to signup.")

	return nil
}

func (c *ChatClient) login(ctx context.Context) error {
	id, err := c.view.Input("Enter id: ")
	if err != nil {
		return err
	}

	password, err := c.view.Password("Enter password: ")
	if err != nil {
		return err
	}

	var res struct {
		SessionID string `json:"session_id"`
	}

	err = c.requester.DoJSON(ctx, http.MethodPost, "login", url.Values{"id": {id}, "pwd": {password}}, &res)
	if err != nil {
		c.showError(err)

		return nil
	}

	c.view.Message("Success to login.")

	c.userID = id
	c.sessionID = res.SessionID
	c.state = stateAfterLogin

	log.Ctx(ctx).Info().Str("user_id", id).Msg("ChatClient: logged in")

	return nil
}

func (c *ChatClient) logout(ctx context.Context) {
	_, err := c.requester.Do(ctx, http.MethodDelete, "session", c.sessionParams())

	switch {
	case err == nil:
		c.view.Message("Logout succeeds.")
		c.clearUser()
	case IsStatus(err, http.StatusForbidden), IsStatus(err, http.StatusNotFound):
		c.view.Message("The session is invalid.")
		c.clearUser()
	default:
		c.showError(err)
		c.view.Message("Logout failed.")
	}
}

func (c *ChatClient) showRooms(ctx context.Context) error {
	rooms, err := c.rooms(ctx)
	if err != nil {
		return err
	}

	c.view.ShowRooms(rooms)

	return nil
}

func (c *ChatClient) createRoom(ctx context.Context) error {
	name, err := c.view.Input("Enter chat room name: ")
	if err != nil {
		return err
	}

	exists, err := c.roomExists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		c.view.Message("Given chat room: %s already exists.", name)

		return nil
	}

	params := c.sessionParams()
	params.Set("chat_room", name)

	if _, err := c.requester.Do(ctx, http.MethodPost, "chatroom", params); err != nil {
		return c.checkSession(err)
	}

	c.view.Message("Create chat room: %s", name)

	return nil
}

func (c *ChatClient) join(ctx context.Context) error {
	name, err := c.view.Input("Enter chat room name: ")
	if err != nil {
		return err
	}

	exists, err := c.roomExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		c.view.Message("The chat room not exist: %s", name)

		return nil
	}

	c.view.Message("Success to join: %s", name)

	c.room = name
	c.state = stateInChatRoom

	return nil
}

//-------------------------------------------------------------

func (c *ChatClient) rooms(ctx context.Context) ([]model.ChatRoom, error) {
	var rooms []model.ChatRoom

	if err := c.requester.DoJSON(ctx, http.MethodGet, "chatroom", c.sessionParams(), &rooms); err != nil {
		return nil, c.checkSession(err)
	}

	return rooms, nil
}

func (c *ChatClient) roomExists(ctx context.Context, name string) (bool, error) {
	rooms, err := c.rooms(ctx)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(rooms, func(r model.ChatRoom) bool { return r.Name == name }), nil
}

func (c *ChatClient) messages(ctx context.Context, room string) ([]model.ChatMessage, error) {
	params := c.sessionParams()
	params.Set("chat_room", room)

	var msgs []model.ChatMessage

	if err := c.requester.DoJSON(ctx, http.MethodGet, "chatmessage", params, &msgs); err != nil {
		return nil, c.checkSession(err)
	}

	return msgs, nil
}

func (c *ChatClient) postMessage(ctx context.Context, room, message string) error {
	params := c.sessionParams()
	params.Set("chat_room", room)
	params.Set("chat_message", message)

	if _, err := c.requester.Do(ctx, http.MethodPost, "chatmessage", params); err != nil {
		return c.checkSession(err)
	}

	return nil
}

//-------------------------------------------------------------

func (c *ChatClient) sessionParams() url.Values {
	return url.Values{"session_id": {c.sessionID}}
}

// checkSession map 403 response to ErrSessionExpired.
func (c *ChatClient) checkSession(err error) error {
	if IsStatus(err, http.StatusForbidden) {
		return aerr.Wrapf(ErrSessionExpired, "request rejected")
	}

	return err
}

// handleError clear user on expired session and show other request errors.
// Errors from input are returned.
func (c *ChatClient) handleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSessionExpired):
		c.view.Message("The session is invalid.")
		c.clearUser()

		return nil
	case aerr.HasTag(err, RequestErrorTag), errors.As(err, new(*StatusError)):
		c.showError(err)

		return nil
	}

	return err
}

func (c *ChatClient) showError(err error) {
	var se *StatusError
	if errors.As(err, &se) {
		c.view.Message("%s", se.Error())

		return
	}

	c.view.Message("Error: %s", aerr.GetUserMessageOr(err, err.Error()))
}

func (c *ChatClient) clearUser() {
	c.userID = ""
	c.sessionID = ""
	c.room = ""
	c.state = stateBeforeLogin
}
