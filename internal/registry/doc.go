// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package registry tracks which users currently hold live WebSocket
connections and which channels they are subscribed to.

One user may hold several connections at once (multiple tabs, phone and
laptop); SendToUser fans out to all of them. Channels are plain string
names (user_{id}, global_notifications, shop_{id}, ...) and subscriptions
are per-user, so a channel broadcast reaches every connection of every
subscribed user.

# Concurrency

The registry is shared mutable state accessed from every connection's
goroutines and from the publisher; all mutating operations are atomic with
respect to each other via an internal RWMutex. Sends never happen while
the lock is held: handle collections are snapshotted under the read lock
and delivery proceeds outside it, so one slow or broken connection cannot
block the registry. Handles whose send fails are evicted after the fan-out
completes.

# Transport Independence

The registry speaks to connections only through the Conn interface (Send
and Close), keeping it free of WebSocket details and trivially fakeable in
tests.
*/
package registry
