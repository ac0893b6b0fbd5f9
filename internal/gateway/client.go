// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/metrics"
	"github.com/rogeriosantos/broskate2/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB

	sendBufferSize = 256
)

// errSendBufferFull is returned by Send when a client cannot keep up with
// its outbound stream. The registry reacts by evicting the connection.
var errSendBufferFull = errors.New("client send buffer full")

var errClientClosed = errors.New("client closed")

// client wraps one gorilla websocket connection with a buffered outbound
// queue drained by a dedicated write pump, so registry fan-out never blocks
// on a slow socket.
type client struct {
	conn *websocket.Conn
	send chan protocol.Outbound

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan protocol.Outbound, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send enqueues an outbound frame without blocking. A full buffer means the
// client is too slow to keep; the error triggers eviction upstream.
func (c *client) Send(msg protocol.Outbound) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		metrics.WSMessagesDropped.Inc()
		return errSendBufferFull
	}
}

// Close sends a close control frame with the given status code and tears the
// connection down. Safe to call multiple times; only the first wins.
func (c *client) Close(code int, reason string) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		deadline := time.Now().Add(writeWait)
		msg := websocket.FormatCloseMessage(code, reason)
		if werr := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil {
			logging.Debug().Err(werr).Msg("failed to write close frame")
		}
		err = c.conn.Close()
	})
	return err
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with periodic pings. One writePump per connection; gorilla permits
// only a single concurrent writer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close(websocket.CloseNormalClosure, "")
	}()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			data, err := protocol.Marshal(msg)
			if err != nil {
				logging.Error().Err(err).Msg("failed to marshal outbound frame")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client frames until the connection dies, handing each
// decoded frame to handle. It owns the read deadline and pong handler.
func (c *client) readPump(handle func(*protocol.Inbound)) {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			// A malformed frame does not terminate the session.
			metrics.WSMessagesMalformed.Inc()
			logging.Warn().Err(err).Msg("ignoring malformed inbound frame")
			continue
		}
		handle(msg)
	}
}
