// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package gateway

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rogeriosantos/broskate2/internal/auth"
	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/metrics"
	"github.com/rogeriosantos/broskate2/internal/notify"
	"github.com/rogeriosantos/broskate2/internal/protocol"
	"github.com/rogeriosantos/broskate2/internal/registry"
)

// Application close codes sent during the token handshake. The connection is
// accepted first so the close code reaches the client; rejecting at the HTTP
// layer would surface as an opaque handshake failure instead.
const (
	CloseMissingToken = 4001
	CloseAuthFailed   = 4003
)

// GlobalChannel is the broadcast channel every user is subscribed to on
// connect, alongside their private user_{id} channel.
const GlobalChannel = "global_notifications"

// Gateway owns WebSocket session lifecycles. It authenticates the handshake,
// registers the connection, flushes the offline backlog, and dispatches
// inbound frames until the connection dies.
type Gateway struct {
	registry  *registry.Registry
	publisher *notify.Publisher
	jwt       *auth.JWTManager
	upgrader  websocket.Upgrader
}

// New creates a gateway over the given registry, publisher, and token
// manager.
func New(reg *registry.Registry, publisher *notify.Publisher, jwt *auth.JWTManager) *Gateway {
	return &Gateway{
		registry:  reg,
		publisher: publisher,
		jwt:       jwt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth happens after the upgrade; browsers cannot set
			// headers on WebSocket requests, so origin alone proves nothing.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection upgrades the request and runs the session for the user
// identified in the path. It blocks until the connection terminates.
//
// Handshake: the token travels as a query parameter. A missing token closes
// with 4001; an invalid token, or a token whose user does not match the path
// user, closes with 4003.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn)
	go c.writePump()

	token := r.URL.Query().Get("token")
	if token == "" {
		metrics.WSAuthFailures.WithLabelValues("missing_token").Inc()
		logging.Warn().Int64("user_id", userID).Msg("websocket connection without token")
		_ = c.Close(CloseMissingToken, "Authentication token required")
		return
	}

	claims, err := g.jwt.ValidateToken(token)
	if err != nil {
		metrics.WSAuthFailures.WithLabelValues("invalid_token").Inc()
		logging.Warn().Err(err).Int64("user_id", userID).Msg("websocket token validation failed")
		_ = c.Close(CloseAuthFailed, "Invalid authentication")
		return
	}
	if claims.UserID != userID {
		metrics.WSAuthFailures.WithLabelValues("identity_mismatch").Inc()
		logging.Warn().Int64("user_id", userID).Int64("token_user_id", claims.UserID).Msg("websocket token user mismatch")
		_ = c.Close(CloseAuthFailed, "Invalid authentication")
		return
	}

	g.registry.Connect(c, userID)
	// Default channels are subscribed explicitly on every connect; each one
	// is confirmed on the wire like a client-initiated subscribe.
	g.registry.Subscribe(c, fmt.Sprintf("user_%d", userID))
	g.registry.Subscribe(c, GlobalChannel)

	if err := g.publisher.FlushPending(userID); err != nil {
		logging.Error().Err(err).Int64("user_id", userID).Msg("failed to flush pending notifications")
	}

	c.readPump(func(msg *protocol.Inbound) {
		g.dispatch(c, userID, msg)
	})

	g.registry.Disconnect(c)
	_ = c.Close(websocket.CloseNormalClosure, "")
}

// dispatch routes one decoded inbound frame. Unknown type tags are logged
// and ignored; they never terminate the session.
func (g *Gateway) dispatch(c *client, userID int64, msg *protocol.Inbound) {
	switch msg.Type {
	case protocol.InboundPing:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		g.registry.SendToConn(c, protocol.NewPong(msg.Timestamp))

	case protocol.InboundSubscribe:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		if msg.Channel == "" {
			logging.Warn().Int64("user_id", userID).Msg("subscribe frame without channel")
			return
		}
		g.registry.Subscribe(c, msg.Channel)

	case protocol.InboundUnsubscribe:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		if msg.Channel == "" {
			logging.Warn().Int64("user_id", userID).Msg("unsubscribe frame without channel")
			return
		}
		g.registry.Unsubscribe(c, msg.Channel)

	case protocol.InboundMarkRead:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		if msg.NotificationID == "" {
			logging.Warn().Int64("user_id", userID).Msg("mark-read frame without notification_id")
			return
		}
		if _, err := g.publisher.MarkAsRead(userID, msg.NotificationID); err != nil {
			logging.Error().Err(err).Int64("user_id", userID).Msg("failed to mark notification read")
		}

	case protocol.InboundUnreadCount:
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		count, err := g.publisher.UnreadCount(userID)
		if err != nil {
			logging.Error().Err(err).Int64("user_id", userID).Msg("failed to read unread count")
			return
		}
		g.registry.SendToConn(c, protocol.NewUnreadCount(count))

	default:
		// Bounded label; client-supplied tags must not explode cardinality.
		metrics.WSMessagesReceived.WithLabelValues("unknown").Inc()
		logging.Warn().Str("type", msg.Type).Int64("user_id", userID).Msg("ignoring unknown inbound frame type")
	}
}
