// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package protocol defines the JSON frames exchanged over WebSocket
connections.

Inbound frames are decoded exactly once at the transport boundary into the
Inbound struct and dispatched on their type tag. Outbound frames form a
closed set of variants: each has a concrete struct type whose constructor
fills the type tag, so there is no ad hoc map-based message building.

# Frame Catalog

Client to server:

	ping                    {"type":"ping","timestamp":...}
	subscribe               {"type":"subscribe","channel":"shop_42"}
	unsubscribe             {"type":"unsubscribe","channel":"shop_42"}
	mark_notification_read  {"type":"mark_notification_read","notification_id":"notif_..."}
	get_unread_count        {"type":"get_unread_count"}

Server to client:

	connection_established     connect acknowledgement
	subscription_confirmed     subscribe acknowledgement
	unsubscription_confirmed   unsubscribe acknowledgement
	pong                       ping reply, timestamp echoed verbatim
	notification               live notification push (fields flattened at top level)
	unread_count               current unread total (on connect, on request)
	unread_count_updated       unread total after a mark-as-read
	recent_notifications       backlog batch flushed on connect
	broadcast                  channel-scoped payload from the management API

Serialization uses goccy/go-json throughout.
*/
package protocol
