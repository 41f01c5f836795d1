// Package hub push new chat messages to websocket clients subscribed to room.
package hub

//
// hub.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
	"gitlab.com/kabes/go-chat/internal/model"
)

const (
	sendBufferSize = 64
	readBufferSize = 1024
)

var Package = do.Package(
	do.Lazy(func(_ do.Injector) (*Hub, error) {
		return New(prometheus.DefaultRegisterer), nil
	}),
)

var ErrHubStopped = aerr.NewSimple("hub stopped").WithTag(aerr.InternalError)

// SessionSource report session liveness and end of sessions.
type SessionSource interface {
	SessionExists(sessionID string) bool
	OnSessionEnd(fn func(sessionID string))
}

type broadcastMessage struct {
	room    string
	payload []byte
}

// Hub keep websocket clients grouped by room. All changes of client set are
// made in Run loop; mu guard reads from other goroutines.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients prometheus.Gauge
	alive   func(sessionID string) bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage

	upgrader websocket.Upgrader
	logger   zerolog.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
	ctx       context.Context //nolint:containedctx
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(reg prometheus.Registerer) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		clients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "chat_websocket_clients",
			Help: "Number of connected websocket clients.",
		}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, sendBufferSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: readBufferSize,
		},
		logger: log.Logger.With().Str("module", "hub").Logger(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start run hub loop in background; next calls are ignored.
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		go h.run()
	})
}

// BindSessions make hub refuse clients of not existing sessions and
// disconnect clients when their session end.
func (h *Hub) BindSessions(src SessionSource) {
	h.mu.Lock()
	h.alive = src.SessionExists
	h.mu.Unlock()

	src.OnSessionEnd(h.CloseSession)
}

// Publish send message to all clients subscribed to message room.
func (h *Hub) Publish(msg model.ChatMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msgf("Hub: marshal message error=%q", err)

		return
	}

	select {
	case h.broadcast <- broadcastMessage{room: msg.Room, payload: payload}:
	case <-h.ctx.Done():
	}
}

// Serve upgrade request to websocket and subscribe client to room. Client
// is disconnected when session `sessionID` is closed (CloseSession).
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, room, userID, sessionID string) error {
	select {
	case <-h.ctx.Done():
		return ErrHubStopped
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return aerr.Wrapf(err, "websocket upgrade failed").WithTag(aerr.ValidationError)
	}

	client := newClient(h, conn, room, userID, sessionID)

	select {
	case h.register <- client:
		return nil
	case <-h.ctx.Done():
		conn.Close()

		return ErrHubStopped
	}
}

// CloseSession disconnect all clients opened with session `sessionID`.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.RLock()

	var clients []*Client

	for _, room := range h.rooms {
		for client := range room {
			if client.sessionID == sessionID {
				clients = append(clients, client)
			}
		}
	}

	h.mu.RUnlock()

	for _, client := range clients {
		h.logger.Debug().Object("client", client).Msg("Hub: session closed; disconnecting")
		h.removeClient(client)
	}
}

// ClientsCount return number of clients subscribed to room.
func (h *Hub) ClientsCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

// Shutdown close all clients and wait for end of pumps.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()
	// run may never be started
	h.startOnce.Do(func() { close(h.done) })

	select {
	case <-h.done:
	case <-ctx.Done():
		return aerr.Wrapf(ctx.Err(), "wait for hub stop failed")
	}

	finished := make(chan struct{})

	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.logger.Debug().Msg("Hub: stopped")

		return nil
	case <-ctx.Done():
		return aerr.Wrapf(ctx.Err(), "wait for websocket clients failed")
	}
}

//-------------------------------------------------------------

func (h *Hub) run() {
	defer close(h.done)

	h.logger.Info().Msg("Hub: started")

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()

			return

		case client := <-h.register:
			if !h.addClient(client) {
				h.logger.Debug().Object("client", client).Msg("Hub: session not exists; client rejected")
				client.conn.Close()

				continue
			}

			h.wg.Add(2) //nolint:mnd

			go func() {
				defer h.wg.Done()

				client.writePump()
			}()

			go func() {
				defer h.wg.Done()

				client.readPump()
			}()

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// addClient add client to room. Return false when client session already
// ended; checked under mu so CloseSession can't miss the client.
func (h *Hub) addClient(client *Client) bool {
	h.mu.Lock()

	if h.alive != nil && !h.alive(client.sessionID) {
		h.mu.Unlock()

		return false
	}

	clients, ok := h.rooms[client.room]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[client.room] = clients
	}

	clients[client] = struct{}{}
	count := len(clients)

	h.mu.Unlock()

	h.clients.Inc()
	h.logger.Debug().Object("client", client).Msgf("Hub: client registered; room_clients=%d", count)

	return true
}

// removeClient drop client from room and close its send channel. Client
// already removed is ignored, so send is closed only once.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.rooms[client.room]
	if ok {
		_, ok = clients[client]
	}

	if ok {
		delete(clients, client)

		if len(clients) == 0 {
			delete(h.rooms, client.room)
		}
	}

	h.mu.Unlock()

	if ok {
		close(client.send)
		h.clients.Dec()
		h.logger.Debug().Object("client", client).Msg("Hub: client unregistered")
	}
}

func (h *Hub) deliver(msg broadcastMessage) {
	h.mu.RLock()

	var slow []*Client

	for client := range h.rooms[msg.room] {
		select {
		case client.send <- msg.payload:
		default:
			slow = append(slow, client)
		}
	}

	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn().Object("client", client).Msg("Hub: client send buffer full; disconnecting")
		h.removeClient(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()

	var clients []*Client

	for _, room := range h.rooms {
		for client := range room {
			clients = append(clients, client)
		}
	}

	h.rooms = make(map[string]map[*Client]struct{})

	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		h.clients.Dec()
	}

	h.logger.Info().Msgf("Hub: closed %d client connections", len(clients))
}

//-------------------------------------------------------------

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 //nolint:mnd
	maxMsgSize = 512
)

// Client is one websocket connection subscribed to room.
type Client struct {
	id        xid.ID
	room      string
	userID    string
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
}

func newClient(h *Hub, conn *websocket.Conn, room, userID, sessionID string) *Client {
	return &Client{
		id:        xid.New(),
		room:      room,
		userID:    userID,
		sessionID: sessionID,
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}
}

func (c *Client) MarshalZerologObject(event *zerolog.Event) {
	event.Str("client_id", c.id.String()).
		Str(common.LogKeyRoom, c.room).
		Str(common.LogKeyUserID, c.userID)
}

// readPump only handle control frames; messages from client are ignored.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}

		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug().Err(err).Object("client", c).Msgf("Hub: client read error=%q", err)
			}

			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.logger.Debug().Err(err).Object("client", c).Msgf("Hub: write message error=%q", err)

				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
