// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package protocol

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rogeriosantos/broskate2/internal/models"
)

// Inbound message type tags.
const (
	InboundPing        = "ping"
	InboundSubscribe   = "subscribe"
	InboundUnsubscribe = "unsubscribe"
	InboundMarkRead    = "mark_notification_read"
	InboundUnreadCount = "get_unread_count"
)

// Outbound message type tags.
const (
	OutboundConnectionEstablished   = "connection_established"
	OutboundSubscriptionConfirmed   = "subscription_confirmed"
	OutboundUnsubscriptionConfirmed = "unsubscription_confirmed"
	OutboundPong                    = "pong"
	OutboundNotification            = "notification"
	OutboundUnreadCount             = "unread_count"
	OutboundUnreadCountUpdated      = "unread_count_updated"
	OutboundRecentNotifications     = "recent_notifications"
	OutboundBroadcast               = "broadcast"
)

// Inbound is a decoded client frame. Fields beyond Type are populated
// according to the type tag; unused fields are left zero.
type Inbound struct {
	Type string `json:"type"`

	// Timestamp is echoed back verbatim in the pong reply. Kept raw so
	// clients may send any JSON value here.
	Timestamp json.RawMessage `json:"timestamp,omitempty"`

	Channel        string `json:"channel,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}

// DecodeInbound parses a raw client frame. It returns an error for frames
// that are not JSON objects or that lack a type tag; unrecognized type tags
// are NOT an error here (the gateway logs and ignores them).
func DecodeInbound(data []byte) (*Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode inbound frame: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("inbound frame missing type tag")
	}
	return &msg, nil
}

// Outbound is the closed set of server-to-client frames. Only types in this
// package implement it.
type Outbound interface {
	isOutbound()
}

// ConnectionEstablished acknowledges a successful connection.
type ConnectionEstablished struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (ConnectionEstablished) isOutbound() {}

// NewConnectionEstablished builds the connect acknowledgement frame.
func NewConnectionEstablished(now time.Time) ConnectionEstablished {
	return ConnectionEstablished{
		Type:      OutboundConnectionEstablished,
		Message:   "Connected to BroSkate real-time notifications",
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// SubscriptionConfirmed acknowledges a channel subscribe or unsubscribe;
// the Type tag carries the direction.
type SubscriptionConfirmed struct {
	Type      string `json:"type"`
	Channel   string `json:"channel"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (SubscriptionConfirmed) isOutbound() {}

// NewSubscriptionConfirmed builds a subscribe confirmation frame.
func NewSubscriptionConfirmed(channel string, now time.Time) SubscriptionConfirmed {
	return SubscriptionConfirmed{
		Type:      OutboundSubscriptionConfirmed,
		Channel:   channel,
		Message:   "Subscribed to " + channel,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// NewUnsubscriptionConfirmed builds an unsubscribe confirmation frame.
func NewUnsubscriptionConfirmed(channel string, now time.Time) SubscriptionConfirmed {
	return SubscriptionConfirmed{
		Type:      OutboundUnsubscriptionConfirmed,
		Channel:   channel,
		Message:   "Unsubscribed from " + channel,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// Pong replies to a client ping, echoing the client's timestamp verbatim.
type Pong struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

func (Pong) isOutbound() {}

// NewPong builds a pong frame echoing ts.
func NewPong(ts json.RawMessage) Pong {
	return Pong{Type: OutboundPong, Timestamp: ts}
}

// NotificationPush delivers a single notification live.
type NotificationPush struct {
	Type string `json:"type"`
	models.Notification
}

func (NotificationPush) isOutbound() {}

// NewNotificationPush wraps a notification for live delivery.
func NewNotificationPush(n models.Notification) NotificationPush {
	return NotificationPush{Type: OutboundNotification, Notification: n}
}

// UnreadCount reports the current unread total, sent on connect and in reply
// to get_unread_count.
type UnreadCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func (UnreadCount) isOutbound() {}

// NewUnreadCount builds an unread_count frame.
func NewUnreadCount(count int) UnreadCount {
	return UnreadCount{Type: OutboundUnreadCount, Count: count}
}

// NewUnreadCountUpdated builds an unread_count_updated frame, pushed after
// mark-as-read operations.
func NewUnreadCountUpdated(count int) UnreadCount {
	return UnreadCount{Type: OutboundUnreadCountUpdated, Count: count}
}

// RecentNotifications batches the most recent notifications, flushed on
// connect for users who were offline while notifications accrued.
type RecentNotifications struct {
	Type          string                `json:"type"`
	Notifications []models.Notification `json:"notifications"`
}

func (RecentNotifications) isOutbound() {}

// NewRecentNotifications builds a recent_notifications frame.
func NewRecentNotifications(notifications []models.Notification) RecentNotifications {
	return RecentNotifications{Type: OutboundRecentNotifications, Notifications: notifications}
}

// Broadcast is an arbitrary channel-scoped message originated via the
// management API.
type Broadcast struct {
	Type           string      `json:"type"`
	Channel        string      `json:"channel"`
	SenderID       int64       `json:"sender_id"`
	SenderUsername string      `json:"sender_username"`
	Data           interface{} `json:"data"`
	Timestamp      string      `json:"timestamp"`
}

func (Broadcast) isOutbound() {}

// NewBroadcast builds a broadcast frame.
func NewBroadcast(channel string, senderID int64, senderUsername string, data interface{}, now time.Time) Broadcast {
	return Broadcast{
		Type:           OutboundBroadcast,
		Channel:        channel,
		SenderID:       senderID,
		SenderUsername: senderUsername,
		Data:           data,
		Timestamp:      now.UTC().Format(time.RFC3339),
	}
}

// Marshal encodes an outbound frame to its wire form.
func Marshal(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}
