// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/metrics"
	"github.com/rogeriosantos/broskate2/internal/protocol"
)

// Conn is a live connection handle owned by the transport layer. Send must
// not block: implementations enqueue to a bounded buffer and report failure
// when the buffer is full or the connection is closed. The registry treats
// any Send error as an implicit disconnect of that handle.
type Conn interface {
	Send(msg protocol.Outbound) error
	Close(code int, reason string) error
}

// Registry maps user identities to their live connection handles and
// per-user channel subscriptions.
//
// Invariants:
//   - a user has an entry in the connection map iff at least one of their
//     handles is live; removing the last handle removes the entry
//   - a handle appears in the reverse map iff it is registered under some
//     user's handle collection
//   - subscriptions survive disconnect; they are process-local state keyed
//     by user, not by handle
type Registry struct {
	mu     sync.RWMutex
	conns  map[int64][]Conn
	owners map[Conn]int64
	subs   map[int64]map[string]struct{}

	now func() time.Time
}

// New creates an empty connection registry.
func New() *Registry {
	return &Registry{
		conns:  make(map[int64][]Conn),
		owners: make(map[Conn]int64),
		subs:   make(map[int64]map[string]struct{}),
		now:    time.Now,
	}
}

// Connect registers a handle under userID and sends the connection
// acknowledgement frame on it. A user may hold multiple simultaneous
// handles; registration is additive. Registering an already-registered
// handle is a no-op.
func (r *Registry) Connect(c Conn, userID int64) {
	r.mu.Lock()
	if _, dup := r.owners[c]; dup {
		r.mu.Unlock()
		return
	}
	r.conns[userID] = append(r.conns[userID], c)
	r.owners[c] = userID
	if _, ok := r.subs[userID]; !ok {
		r.subs[userID] = make(map[string]struct{})
	}
	users := len(r.conns)
	r.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	metrics.WSUsersConnected.Set(float64(users))
	logging.Info().Int64("user_id", userID).Msg("user connected via websocket")

	r.SendToConn(c, protocol.NewConnectionEstablished(r.now()))
}

// Disconnect removes a handle from the registry. When the handle was the
// user's last live connection, the user's entry is removed entirely;
// subscriptions are kept so a reconnecting user does not lose them.
// Calling Disconnect for an unregistered handle is a safe no-op, which makes
// duplicate cleanup from racing termination paths harmless.
func (r *Registry) Disconnect(c Conn) {
	r.mu.Lock()
	userID, ok := r.owners[c]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.owners, c)

	handles := r.conns[userID]
	for i, h := range handles {
		if h == c {
			r.conns[userID] = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	if len(r.conns[userID]) == 0 {
		delete(r.conns, userID)
	}
	users := len(r.conns)
	r.mu.Unlock()

	metrics.WSConnectionsActive.Dec()
	metrics.WSUsersConnected.Set(float64(users))
	logging.Info().Int64("user_id", userID).Msg("user disconnected from websocket")
}

// SendToConn delivers a single frame to one handle. A failed send marks the
// handle as implicitly disconnected and unregisters it; the failure is not
// propagated to the caller.
func (r *Registry) SendToConn(c Conn, msg protocol.Outbound) {
	if err := c.Send(msg); err != nil {
		logging.Error().Err(err).Msg("failed to send message to connection")
		r.Disconnect(c)
	}
}

// SendToUser delivers a frame to every live handle of userID. Per-handle
// failures are isolated: a broken handle is disconnected without affecting
// delivery to the user's other handles.
func (r *Registry) SendToUser(userID int64, msg protocol.Outbound) {
	r.mu.RLock()
	handles := make([]Conn, len(r.conns[userID]))
	copy(handles, r.conns[userID])
	r.mu.RUnlock()

	var failed []Conn
	for _, h := range handles {
		if err := h.Send(msg); err != nil {
			logging.Error().Err(err).Int64("user_id", userID).Msg("failed to send message to user")
			failed = append(failed, h)
		}
	}
	for _, h := range failed {
		r.Disconnect(h)
	}
}

// BroadcastToChannel delivers a frame to every user whose subscription set
// contains channel. Ordering across users is unspecified.
func (r *Registry) BroadcastToChannel(msg protocol.Outbound, channel string) {
	r.mu.RLock()
	var targets []int64
	for userID, channels := range r.subs {
		if _, ok := channels[channel]; ok {
			targets = append(targets, userID)
		}
	}
	r.mu.RUnlock()

	metrics.ChannelBroadcasts.Inc()
	for _, userID := range targets {
		r.SendToUser(userID, msg)
	}
}

// Subscribe adds channel to the owning user's subscription set and confirms
// on the handle. No-op if the handle is not registered.
func (r *Registry) Subscribe(c Conn, channel string) {
	r.mu.Lock()
	userID, ok := r.owners[c]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, ok := r.subs[userID]; !ok {
		r.subs[userID] = make(map[string]struct{})
	}
	r.subs[userID][channel] = struct{}{}
	r.mu.Unlock()

	logging.Info().Int64("user_id", userID).Str("channel", channel).Msg("subscribed to channel")
	r.SendToConn(c, protocol.NewSubscriptionConfirmed(channel, r.now()))
}

// Unsubscribe removes channel from the owning user's subscription set and
// confirms on the handle. No-op if the handle is unknown or the channel was
// not subscribed.
func (r *Registry) Unsubscribe(c Conn, channel string) {
	r.mu.Lock()
	userID, ok := r.owners[c]
	if !ok {
		r.mu.Unlock()
		return
	}
	channels, ok := r.subs[userID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if _, subscribed := channels[channel]; !subscribed {
		r.mu.Unlock()
		return
	}
	delete(channels, channel)
	r.mu.Unlock()

	logging.Info().Int64("user_id", userID).Str("channel", channel).Msg("unsubscribed from channel")
	r.SendToConn(c, protocol.NewUnsubscriptionConfirmed(channel, r.now()))
}

// ConnectedUsers returns the IDs of all users with at least one live handle,
// sorted for deterministic output.
func (r *Registry) ConnectedUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]int64, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

// ConnectionCount returns the total number of live handles across all users.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, handles := range r.conns {
		total += len(handles)
	}
	return total
}

// IsUserConnected reports whether userID has at least one live handle.
func (r *Registry) IsUserConnected(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}
