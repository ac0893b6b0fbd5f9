// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package api provides the HTTP surface of the realtime service: the WebSocket
upgrade endpoint, connection management, and the notification REST API,
routed via Chi.

# Endpoints

Open endpoints:

	GET  /health                          liveness probe
	GET  /metrics                         Prometheus exposition
	GET  /api/v1/ws/{user_id}             WebSocket upgrade (JWT in token query param)

Authenticated endpoints (Bearer header or token cookie):

	GET  /api/v1/ws/connections           connected users and connection counts
	POST /api/v1/ws/notify/{user_id}      send a notification to one user
	GET  /api/v1/notifications            notification history + unread count
	GET  /api/v1/notifications/unread-count  unread total only
	POST /api/v1/notifications/{id}/read  mark one notification read
	POST /api/v1/notifications/read-all   mark everything read

Admin endpoints (role claim must be admin):

	POST /api/v1/ws/broadcast/{channel}   broadcast an arbitrary payload to a channel

The WebSocket route skips HTTP-level authentication: browsers cannot set
headers on the upgrade request, so the token travels as a query parameter
and is verified inside the gateway handshake with application close codes.

# Response Envelope

All JSON endpoints respond with a uniform envelope:

	{"status": "success", "data": {...}}
	{"status": "error", "error": {"code": "NOT_FOUND", "message": "..."}}

# Middleware

Authenticated routes run through per-IP rate limiting, Prometheus request
metrics (labeled by Chi route pattern, not raw path), and JWT
authentication, in that order. CORS and panic recovery wrap the whole
router.

# See Also

  - internal/gateway: WebSocket session protocol
  - internal/auth: JWT validation, rate limiting, CORS
  - internal/notify: notification persistence and delivery
*/
package api
