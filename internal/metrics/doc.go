// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package metrics provides Prometheus instrumentation for the realtime
backend, exposed at /metrics in Prometheus text format.

# Available Metrics

WebSocket:

  - ws_connections_active: open WebSocket connections (gauge)
  - ws_users_connected: distinct users with at least one connection (gauge)
  - ws_auth_failures_total: rejected handshakes (counter)
    Labels: reason (missing_token, invalid_token, identity_mismatch)
  - ws_messages_received_total: inbound frames by type tag (counter)
  - ws_messages_malformed_total: undecodable inbound frames (counter)
  - ws_messages_dropped_total: outbound frames dropped on full send buffers (counter)

Notifications:

  - notifications_sent_total: notifications published, by type (counter)
  - notifications_delivered_live_total: pushed to a live connection (counter)
  - notifications_stored_total: persisted to history (counter)
  - channel_broadcasts_total: channel broadcast fan-outs (counter)

HTTP API:

  - api_requests_total: requests by method, endpoint, status_code (counter)
  - api_request_duration_seconds: latency by method and endpoint (histogram)

Endpoint labels use the Chi route pattern ("/api/v1/ws/{user_id}") rather
than the raw path, keeping cardinality bounded. Inbound WebSocket frames
with unrecognized type tags are counted under the "unknown" label for the
same reason.

All metrics are registered at package load via promauto; recording is
thread-safe.
*/
package metrics
