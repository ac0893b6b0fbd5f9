// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package notify stores per-user notifications and publishes them to live
WebSocket connections, buffering history for users who are offline.

# Components

  - Store: persistence contract for notification history. Two
    implementations ship: MemoryStore (map-backed, default) and BadgerStore
    (BadgerDB-backed, survives restarts).
  - Publisher: the delivery engine. It persists a notification, then pushes
    it to every live connection the recipient holds. Offline recipients
    see the backlog flushed on their next connect.

History is capped at MaxStoredPerUser entries per user; appending beyond
the cap evicts the oldest entries first.

# Domain Helpers

The Publisher carries one helper per social event so message templates live
in exactly one place: NotifyFollow, NotifyEventUpdate, NotifySpotCreated,
NotifyShopUpdate, and NotifyDirectMessage. The spot and shop helpers fan
out to many recipients; each recipient gets an independent stored copy.

Mark-as-read operations push an unread_count_updated frame to the user's
live connections so every open tab converges on the same badge count.

# BadgerDB Layout

BadgerStore keys notifications as notif:{user_id}:{seq} with a fixed-width
decimal sequence from a per-user counter key, so a forward iteration over
the prefix yields insertion order and a reverse iteration yields
most-recent-first without sorting.
*/
package notify
