// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package notify

import (
	"sync"

	"github.com/rogeriosantos/broskate2/internal/models"
)

// MemoryStore keeps notification history in process memory. History is lost
// on restart; use BadgerStore when durability is required.
type MemoryStore struct {
	mu            sync.RWMutex
	notifications map[int64][]models.Notification
}

// NewMemoryStore creates an empty in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notifications: make(map[int64][]models.Notification),
	}
}

// Append adds a notification to the end of the user's history.
func (s *MemoryStore) Append(userID int64, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.notifications[userID], n)
	if len(list) > MaxStoredPerUser {
		list = list[len(list)-MaxStoredPerUser:]
	}
	s.notifications[userID] = list
	return nil
}

// Recent returns up to limit notifications, most recent first.
func (s *MemoryStore) Recent(userID int64, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.notifications[userID]
	if limit > len(list) {
		limit = len(list)
	}
	out := make([]models.Notification, 0, limit)
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *MemoryStore) UnreadCount(userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks a single notification read.
func (s *MemoryStore) MarkRead(userID int64, notificationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	for i := range list {
		if list[i].ID == notificationID {
			list[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

// MarkAllRead marks every notification read and returns how many were
// previously unread.
func (s *MemoryStore) MarkAllRead(userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	list := s.notifications[userID]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			marked++
		}
	}
	return marked, nil
}
