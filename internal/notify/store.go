// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package notify

import "github.com/rogeriosantos/broskate2/internal/models"

// MaxStoredPerUser caps the per-user notification history. Appending beyond
// the cap evicts the oldest entries first.
const MaxStoredPerUser = 100

// Store is the persistence contract for notification history. Implementations
// must order each user's notifications by insertion and enforce
// MaxStoredPerUser.
type Store interface {
	// Append adds a notification to the end of the user's history, evicting
	// the oldest entries when the cap is exceeded.
	Append(userID int64, n models.Notification) error

	// Recent returns up to limit notifications, most recent first.
	Recent(userID int64, limit int) ([]models.Notification, error)

	// UnreadCount returns the number of stored notifications not yet marked
	// read.
	UnreadCount(userID int64) (int, error)

	// MarkRead marks a single notification read. It reports whether the
	// notification existed in the user's history.
	MarkRead(userID int64, notificationID string) (bool, error)

	// MarkAllRead marks every stored notification read and returns how many
	// were previously unread.
	MarkAllRead(userID int64) (int, error)
}
