// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package gateway upgrades HTTP requests to WebSocket sessions and runs the
per-connection protocol for the realtime notification service.

A session is established against /api/v1/ws/{user_id} with a JWT carried in
the "token" query parameter. The gateway upgrades first and authenticates
second, so that authentication failures can be reported with an application
close code the browser WebSocket API can actually observe:

  - 4001: no token supplied
  - 4003: token invalid, expired, or issued for a different user

# Connection Lifecycle

 1. HTTP upgrade via gorilla/websocket
 2. Token validation against the path's user_id
 3. Registration with the connection registry (connection_established frame)
 4. Default channel subscriptions: user_{id} and global_notifications, each
    confirmed with a subscription_confirmed frame
 5. Backlog flush: unread_count, plus recent_notifications when non-empty
 6. Inbound frame loop until the peer disconnects
 7. Unregistration and close

# Inbound Frames

The read loop dispatches on the frame's type tag:

  - ping: replied with pong, echoing the client timestamp verbatim
  - subscribe / unsubscribe: channel membership, confirmed per direction
  - mark_notification_read: marks one notification, pushes unread_count_updated
  - get_unread_count: replies with the current unread_count

Malformed frames and unknown type tags are counted, logged, and ignored;
they never terminate the session.

# Pump Goroutines

Each connection runs two goroutines in the gorilla/websocket pattern. The
write pump owns all writes to the socket: outbound frames arrive on a
buffered channel and a ticker sends protocol-level pings. The read pump owns
all reads, enforcing the read limit and pong deadline. When the send buffer
fills, frames for that connection are dropped and counted rather than
blocking the publisher.

Timing constants:

  - writeWait: 10s per outbound write
  - pongWait: 60s without a pong closes the connection
  - pingPeriod: 54s between pings (must be under pongWait)
  - maxMessageSize: 512KB inbound frame limit

# See Also

  - internal/registry: connection and channel bookkeeping
  - internal/notify: notification persistence and live delivery
  - internal/protocol: wire frame definitions
*/
package gateway
