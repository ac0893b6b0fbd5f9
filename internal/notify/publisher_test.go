// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package notify

import (
	"fmt"
	"testing"

	"github.com/rogeriosantos/broskate2/internal/models"
	"github.com/rogeriosantos/broskate2/internal/protocol"
)

// fakeDelivery records fan-out calls and simulates per-user online status.
type fakeDelivery struct {
	online map[int64]bool
	sent   map[int64][]protocol.Outbound
}

func newFakeDelivery(onlineUsers ...int64) *fakeDelivery {
	online := make(map[int64]bool)
	for _, id := range onlineUsers {
		online[id] = true
	}
	return &fakeDelivery{online: online, sent: make(map[int64][]protocol.Outbound)}
}

func (f *fakeDelivery) IsUserConnected(userID int64) bool { return f.online[userID] }

func (f *fakeDelivery) SendToUser(userID int64, msg protocol.Outbound) {
	f.sent[userID] = append(f.sent[userID], msg)
}

func newTestPublisher(delivery Delivery) *Publisher {
	p := NewPublisher(NewMemoryStore(), delivery)
	seq := 0
	p.newID = func() string {
		seq++
		return fmt.Sprintf("notif_test_%04d", seq)
	}
	return p
}

func TestSendDeliversLiveWhenConnected(t *testing.T) {
	delivery := newFakeDelivery(7)
	p := newTestPublisher(delivery)

	id, err := p.Send(7, models.NotificationInfo, "Hello", "world", nil, nil, true)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id == "" {
		t.Fatal("Send returned empty notification ID")
	}

	frames := delivery.sent[7]
	if len(frames) != 1 {
		t.Fatalf("expected 1 live frame, got %d", len(frames))
	}
	push, ok := frames[0].(protocol.NotificationPush)
	if !ok {
		t.Fatalf("expected NotificationPush, got %T", frames[0])
	}
	if push.Notification.ID != id {
		t.Errorf("pushed ID %q, want %q", push.Notification.ID, id)
	}
	if push.Notification.Title != "Hello" {
		t.Errorf("pushed title %q, want Hello", push.Notification.Title)
	}
}

func TestSendBuffersForOfflineUser(t *testing.T) {
	delivery := newFakeDelivery() // nobody online
	p := newTestPublisher(delivery)

	if _, err := p.Send(7, models.NotificationInfo, "Hello", "world", nil, nil, true); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(delivery.sent[7]) != 0 {
		t.Errorf("offline user should not receive live frames, got %d", len(delivery.sent[7]))
	}
	count, err := p.UnreadCount(7)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Errorf("UnreadCount = %d, want 1", count)
	}
}

func TestSendNonPersistentIsNotStored(t *testing.T) {
	delivery := newFakeDelivery(7)
	p := newTestPublisher(delivery)

	if _, err := p.Send(7, models.NotificationInfo, "Ephemeral", "gone", nil, nil, false); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(delivery.sent[7]) != 1 {
		t.Fatalf("live delivery expected even for non-persistent, got %d frames", len(delivery.sent[7]))
	}
	count, err := p.UnreadCount(7)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Errorf("UnreadCount = %d, want 0 for non-persistent send", count)
	}
}

func TestNotifyFollow(t *testing.T) {
	delivery := newFakeDelivery(2)
	p := newTestPublisher(delivery)

	if err := p.NotifyFollow(1, 2, "bboy"); err != nil {
		t.Fatalf("NotifyFollow: %v", err)
	}

	frames := delivery.sent[2]
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	push := frames[0].(protocol.NotificationPush)
	if push.Notification.Type != models.NotificationUserFollow {
		t.Errorf("type = %q, want user_follow", push.Notification.Type)
	}
	if push.Notification.Title != "New Follower" {
		t.Errorf("title = %q, want New Follower", push.Notification.Title)
	}
	if push.Notification.Message != "bboy started following you!" {
		t.Errorf("message = %q", push.Notification.Message)
	}
	if push.Notification.SenderID == nil || *push.Notification.SenderID != 1 {
		t.Errorf("sender_id = %v, want 1", push.Notification.SenderID)
	}
	if got := push.Notification.Data["action"]; got != "user_followed" {
		t.Errorf("data.action = %v, want user_followed", got)
	}
}

func TestNotifyShopUpdateFansOutToMembers(t *testing.T) {
	delivery := newFakeDelivery(1, 2)
	p := newTestPublisher(delivery)

	shop := ShopInfo{ID: 42, Name: "Deck Dreams", Announcement: "Fresh decks in stock"}
	if err := p.NotifyShopUpdate(shop, []int64{1, 2, 3}); err != nil {
		t.Fatalf("NotifyShopUpdate: %v", err)
	}

	for _, id := range []int64{1, 2} {
		frames := delivery.sent[id]
		if len(frames) != 1 {
			t.Fatalf("user %d: expected 1 frame, got %d", id, len(frames))
		}
		push := frames[0].(protocol.NotificationPush)
		if push.Notification.Title != "Shop Update: Deck Dreams" {
			t.Errorf("title = %q", push.Notification.Title)
		}
		if push.Notification.Message != "Fresh decks in stock" {
			t.Errorf("message = %q", push.Notification.Message)
		}
	}

	// Offline member 3 gets a stored copy.
	count, err := p.UnreadCount(3)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Errorf("UnreadCount(3) = %d, want 1", count)
	}
}

func TestNotifyEventUpdateDefaults(t *testing.T) {
	delivery := newFakeDelivery(5)
	p := newTestPublisher(delivery)

	if err := p.NotifyEventUpdate(EventInfo{ID: 9}, []int64{5}); err != nil {
		t.Fatalf("NotifyEventUpdate: %v", err)
	}
	push := delivery.sent[5][0].(protocol.NotificationPush)
	if push.Notification.Title != "Event Update: Skate Event" {
		t.Errorf("title = %q", push.Notification.Title)
	}
	if push.Notification.Message != "Event on TBD has been updated" {
		t.Errorf("message = %q", push.Notification.Message)
	}
}

func TestMarkAsReadPushesUpdatedCount(t *testing.T) {
	delivery := newFakeDelivery(7)
	p := newTestPublisher(delivery)

	id1, _ := p.Send(7, models.NotificationInfo, "a", "a", nil, nil, true)
	_, _ = p.Send(7, models.NotificationInfo, "b", "b", nil, nil, true)
	delivery.sent[7] = nil

	found, err := p.MarkAsRead(7, id1)
	if err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if !found {
		t.Fatal("notification should have been found")
	}

	frames := delivery.sent[7]
	if len(frames) != 1 {
		t.Fatalf("expected 1 count-update frame, got %d", len(frames))
	}
	upd, ok := frames[0].(protocol.UnreadCount)
	if !ok {
		t.Fatalf("expected UnreadCount frame, got %T", frames[0])
	}
	if upd.Type != protocol.OutboundUnreadCountUpdated {
		t.Errorf("type tag = %q, want unread_count_updated", upd.Type)
	}
	if upd.Count != 1 {
		t.Errorf("count = %d, want 1", upd.Count)
	}
}

func TestMarkAllAsReadPushesZero(t *testing.T) {
	delivery := newFakeDelivery(7)
	p := newTestPublisher(delivery)

	for i := 0; i < 3; i++ {
		_, _ = p.Send(7, models.NotificationInfo, "t", "m", nil, nil, true)
	}
	delivery.sent[7] = nil

	marked, err := p.MarkAllAsRead(7)
	if err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}
	if marked != 3 {
		t.Errorf("marked = %d, want 3", marked)
	}

	frames := delivery.sent[7]
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	upd := frames[0].(protocol.UnreadCount)
	if upd.Count != 0 {
		t.Errorf("count = %d, want 0", upd.Count)
	}

	count, _ := p.UnreadCount(7)
	if count != 0 {
		t.Errorf("UnreadCount = %d, want 0", count)
	}
}

func TestFlushPendingWithBacklog(t *testing.T) {
	delivery := newFakeDelivery() // user starts offline
	p := newTestPublisher(delivery)

	for i := 0; i < 5; i++ {
		_, _ = p.Send(7, models.NotificationInfo, "t", "m", nil, nil, true)
	}

	// User comes online; the gateway calls FlushPending.
	delivery.online[7] = true
	if err := p.FlushPending(7); err != nil {
		t.Fatalf("FlushPending: %v", err)
	}

	frames := delivery.sent[7]
	if len(frames) != 2 {
		t.Fatalf("expected unread_count + recent_notifications, got %d frames", len(frames))
	}
	count, ok := frames[0].(protocol.UnreadCount)
	if !ok || count.Type != protocol.OutboundUnreadCount {
		t.Fatalf("first frame should be unread_count, got %T", frames[0])
	}
	if count.Count != 5 {
		t.Errorf("unread count = %d, want 5", count.Count)
	}
	recent, ok := frames[1].(protocol.RecentNotifications)
	if !ok {
		t.Fatalf("second frame should be recent_notifications, got %T", frames[1])
	}
	if len(recent.Notifications) != 5 {
		t.Errorf("recent notifications = %d, want 5", len(recent.Notifications))
	}
}

func TestFlushPendingEmptyHistorySendsCountOnly(t *testing.T) {
	delivery := newFakeDelivery(7)
	p := newTestPublisher(delivery)

	if err := p.FlushPending(7); err != nil {
		t.Fatalf("FlushPending: %v", err)
	}

	frames := delivery.sent[7]
	if len(frames) != 1 {
		t.Fatalf("expected only unread_count frame, got %d", len(frames))
	}
	count := frames[0].(protocol.UnreadCount)
	if count.Count != 0 {
		t.Errorf("count = %d, want 0", count.Count)
	}
}

func TestFlushPendingLimitsRecentToTen(t *testing.T) {
	delivery := newFakeDelivery()
	p := newTestPublisher(delivery)

	for i := 0; i < 25; i++ {
		_, _ = p.Send(7, models.NotificationInfo, "t", "m", nil, nil, true)
	}
	delivery.online[7] = true
	if err := p.FlushPending(7); err != nil {
		t.Fatalf("FlushPending: %v", err)
	}

	recent := delivery.sent[7][1].(protocol.RecentNotifications)
	if len(recent.Notifications) != 10 {
		t.Errorf("recent notifications = %d, want 10", len(recent.Notifications))
	}
}
