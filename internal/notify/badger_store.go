// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package notify

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/rogeriosantos/broskate2/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	notifKeyPrefix = "notif:"
	notifSeqPrefix = "notif_seq:"
)

// BadgerStore implements Store using BadgerDB for durable storage. History
// survives restarts, so users see their backlog even after a redeploy.
//
// Keys are "notif:<user_id>:<seq>" where seq is a per-user monotonic counter
// rendered as a fixed-width decimal. Fixed width makes lexicographic key
// order equal insertion order, which lets Recent walk the prefix in reverse.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerDB-backed notification store. The caller
// owns the database handle and its lifecycle.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func notifUserPrefix(userID int64) []byte {
	return []byte(fmt.Sprintf("%s%d:", notifKeyPrefix, userID))
}

func notifKey(userID int64, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%d:%020d", notifKeyPrefix, userID, seq))
}

func notifSeqKey(userID int64) []byte {
	return []byte(fmt.Sprintf("%s%d", notifSeqPrefix, userID))
}

// Append adds a notification to the end of the user's history and evicts the
// oldest entries beyond the cap within the same transaction.
func (s *BadgerStore) Append(userID int64, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn, userID)
		if err != nil {
			return err
		}
		if err := txn.Set(notifKey(userID, seq), data); err != nil {
			return fmt.Errorf("set notification: %w", err)
		}

		// Collect keys oldest-first and delete everything beyond the cap.
		prefix := notifUserPrefix(userID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for i := 0; i < len(keys)-MaxStoredPerUser; i++ {
			if err := txn.Delete(keys[i]); err != nil {
				return fmt.Errorf("evict notification: %w", err)
			}
		}
		return nil
	})
}

func nextSeq(txn *badger.Txn, userID int64) (uint64, error) {
	key := notifSeqKey(userID)
	var seq uint64

	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		seq = 0
	case err != nil:
		return 0, fmt.Errorf("get sequence: %w", err)
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value")
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set(key, buf); err != nil {
		return 0, fmt.Errorf("set sequence: %w", err)
	}
	return seq, nil
}

// Recent returns up to limit notifications, most recent first.
func (s *BadgerStore) Recent(userID int64, limit int) ([]models.Notification, error) {
	var out []models.Notification

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := notifUserPrefix(userID)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last possible key for this user; 0xff sorts after
		// any decimal digit.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			var n models.Notification
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("unmarshal notification: %w", err)
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *BadgerStore) UnreadCount(userID int64) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := notifUserPrefix(userID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var n models.Notification
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("unmarshal notification: %w", err)
			}
			if !n.Read {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks a single notification read.
func (s *BadgerStore) MarkRead(userID int64, notificationID string) (bool, error) {
	found := false

	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := notifUserPrefix(userID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var n models.Notification
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("unmarshal notification: %w", err)
			}
			if n.ID != notificationID {
				continue
			}
			found = true
			if n.Read {
				return nil
			}
			n.Read = true
			data, err := json.Marshal(n)
			if err != nil {
				return fmt.Errorf("marshal notification: %w", err)
			}
			return txn.Set(item.KeyCopy(nil), data)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// MarkAllRead marks every notification read and returns how many were
// previously unread.
func (s *BadgerStore) MarkAllRead(userID int64) (int, error) {
	marked := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := notifUserPrefix(userID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		type rewrite struct {
			key  []byte
			data []byte
		}
		var rewrites []rewrite

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var n models.Notification
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			}); err != nil {
				return fmt.Errorf("unmarshal notification: %w", err)
			}
			if n.Read {
				continue
			}
			n.Read = true
			data, err := json.Marshal(n)
			if err != nil {
				return fmt.Errorf("marshal notification: %w", err)
			}
			rewrites = append(rewrites, rewrite{key: item.KeyCopy(nil), data: data})
		}

		for _, rw := range rewrites {
			if err := txn.Set(rw.key, rw.data); err != nil {
				return fmt.Errorf("set notification: %w", err)
			}
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}
