// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package models

import "time"

// NotificationType classifies a notification for client-side rendering
// and filtering.
type NotificationType string

// Notification types recognized by clients.
const (
	NotificationInfo        NotificationType = "info"
	NotificationSuccess     NotificationType = "success"
	NotificationWarning     NotificationType = "warning"
	NotificationError       NotificationType = "error"
	NotificationEventInvite NotificationType = "event_invite"
	NotificationShopUpdate  NotificationType = "shop_update"
	NotificationUserFollow  NotificationType = "user_follow"
	NotificationSpotUpdate  NotificationType = "spot_update"
	NotificationMessage     NotificationType = "message"
)

// Valid reports whether t is one of the recognized notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning,
		NotificationError, NotificationEventInvite, NotificationShopUpdate,
		NotificationUserFollow, NotificationSpotUpdate, NotificationMessage:
		return true
	}
	return false
}

// Notification is a single message delivered to a user, either pushed live
// over their WebSocket connections or retrieved later from the store.
//
// Read is stored inline with the record; mark-as-read operations update it
// in place.
type Notification struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	SenderID  *int64                 `json:"sender_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Read      bool                   `json:"read"`
}
