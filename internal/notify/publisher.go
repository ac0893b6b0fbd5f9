// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/metrics"
	"github.com/rogeriosantos/broskate2/internal/models"
	"github.com/rogeriosantos/broskate2/internal/protocol"
)

// Delivery is the live fan-out surface the publisher needs from the
// connection registry.
type Delivery interface {
	IsUserConnected(userID int64) bool
	SendToUser(userID int64, msg protocol.Outbound)
}

// EventInfo carries the event fields referenced by event notifications.
type EventInfo struct {
	ID    int64
	Title string
	Date  string
}

// SpotInfo carries the spot fields referenced by spot notifications.
type SpotInfo struct {
	ID   int64
	Name string
}

// ShopInfo carries the shop fields referenced by shop notifications.
type ShopInfo struct {
	ID           int64
	Name         string
	Announcement string
}

// Publisher is the single write path for notifications: it persists each
// notification through the Store and pushes it over WebSocket when the
// recipient is online. Offline recipients see their backlog via FlushPending
// on their next connect.
type Publisher struct {
	store    Store
	delivery Delivery

	newID func() string
	now   func() time.Time
}

// NewPublisher creates a publisher over the given store and live delivery
// surface.
func NewPublisher(store Store, delivery Delivery) *Publisher {
	return &Publisher{
		store:    store,
		delivery: delivery,
		newID:    func() string { return "notif_" + uuid.NewString() },
		now:      time.Now,
	}
}

// Send creates a notification, persists it (unless persistent is false), and
// delivers it live when the recipient is connected. It returns the generated
// notification ID.
func (p *Publisher) Send(userID int64, typ models.NotificationType, title, message string, data map[string]interface{}, senderID *int64, persistent bool) (string, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	n := models.Notification{
		ID:        p.newID(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		SenderID:  senderID,
		Timestamp: p.now(),
		Read:      false,
	}

	if persistent {
		if err := p.store.Append(userID, n); err != nil {
			return "", fmt.Errorf("store notification: %w", err)
		}
	}
	metrics.NotificationsSent.WithLabelValues(string(typ)).Inc()

	if p.delivery.IsUserConnected(userID) {
		p.delivery.SendToUser(userID, protocol.NewNotificationPush(n))
		metrics.NotificationsDeliveredLive.Inc()
		logging.Info().Int64("user_id", userID).Str("title", title).Msg("sent real-time notification")
	} else {
		metrics.NotificationsStored.Inc()
		logging.Info().Int64("user_id", userID).Str("title", title).Msg("user offline, notification stored")
	}

	return n.ID, nil
}

// NotifyFollow tells followedUserID that followerUsername started following
// them.
func (p *Publisher) NotifyFollow(followerID, followedUserID int64, followerUsername string) error {
	_, err := p.Send(
		followedUserID,
		models.NotificationUserFollow,
		"New Follower",
		fmt.Sprintf("%s started following you!", followerUsername),
		map[string]interface{}{
			"follower_id": followerID,
			"action":      "user_followed",
		},
		&followerID,
		true,
	)
	return err
}

// NotifyEventUpdate fans an event update out to its attendees.
func (p *Publisher) NotifyEventUpdate(event EventInfo, attendeeIDs []int64) error {
	title := event.Title
	if title == "" {
		title = "Skate Event"
	}
	date := event.Date
	if date == "" {
		date = "TBD"
	}
	for _, userID := range attendeeIDs {
		_, err := p.Send(
			userID,
			models.NotificationEventInvite,
			fmt.Sprintf("Event Update: %s", title),
			fmt.Sprintf("Event on %s has been updated", date),
			map[string]interface{}{
				"event_id": event.ID,
				"action":   "event_updated",
			},
			nil,
			true,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// NotifySpotCreated tells nearby users about a newly added skate spot.
func (p *Publisher) NotifySpotCreated(spot SpotInfo, nearbyUserIDs []int64) error {
	name := spot.Name
	if name == "" {
		name = "Skate Spot"
	}
	for _, userID := range nearbyUserIDs {
		_, err := p.Send(
			userID,
			models.NotificationSpotUpdate,
			fmt.Sprintf("New Spot: %s", name),
			"A new skate spot was added near you!",
			map[string]interface{}{
				"spot_id": spot.ID,
				"action":  "spot_created",
			},
			nil,
			true,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// NotifyShopUpdate fans a shop announcement out to its members.
func (p *Publisher) NotifyShopUpdate(shop ShopInfo, memberIDs []int64) error {
	name := shop.Name
	if name == "" {
		name = "Skate Shop"
	}
	message := shop.Announcement
	if message == "" {
		message = "New update from your shop!"
	}
	for _, userID := range memberIDs {
		_, err := p.Send(
			userID,
			models.NotificationShopUpdate,
			fmt.Sprintf("Shop Update: %s", name),
			message,
			map[string]interface{}{
				"shop_id": shop.ID,
				"action":  "shop_updated",
			},
			nil,
			true,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// NotifyDirectMessage tells recipientID that senderUsername sent them a
// message. Only a preview travels in the notification; the message body
// lives in the messaging domain.
func (p *Publisher) NotifyDirectMessage(senderID, recipientID int64, senderUsername, preview string) error {
	_, err := p.Send(
		recipientID,
		models.NotificationMessage,
		"New Message",
		fmt.Sprintf("%s sent you a message", senderUsername),
		map[string]interface{}{
			"sender_id": senderID,
			"preview":   preview,
			"action":    "message_received",
		},
		&senderID,
		true,
	)
	return err
}

// MarkAsRead marks one notification read and pushes the updated unread count
// to the user's live connections. It reports whether the notification
// existed.
func (p *Publisher) MarkAsRead(userID int64, notificationID string) (bool, error) {
	found, err := p.store.MarkRead(userID, notificationID)
	if err != nil {
		return false, err
	}

	count, err := p.store.UnreadCount(userID)
	if err != nil {
		return found, err
	}
	if p.delivery.IsUserConnected(userID) {
		p.delivery.SendToUser(userID, protocol.NewUnreadCountUpdated(count))
	}
	logging.Info().Str("notification_id", notificationID).Int64("user_id", userID).Msg("notification marked as read")
	return found, nil
}

// MarkAllAsRead marks every notification read, pushes a zero unread count to
// live connections, and returns how many notifications were newly marked.
func (p *Publisher) MarkAllAsRead(userID int64) (int, error) {
	marked, err := p.store.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}
	if p.delivery.IsUserConnected(userID) {
		p.delivery.SendToUser(userID, protocol.NewUnreadCountUpdated(0))
	}
	logging.Info().Int64("user_id", userID).Int("marked", marked).Msg("all notifications marked as read")
	return marked, nil
}

// FlushPending sends the connect-time backlog to a user who just came
// online: the unread count always, and the ten most recent notifications
// when any exist.
func (p *Publisher) FlushPending(userID int64) error {
	count, err := p.store.UnreadCount(userID)
	if err != nil {
		return err
	}
	p.delivery.SendToUser(userID, protocol.NewUnreadCount(count))

	recent, err := p.store.Recent(userID, 10)
	if err != nil {
		return err
	}
	if len(recent) > 0 {
		p.delivery.SendToUser(userID, protocol.NewRecentNotifications(recent))
	}
	return nil
}

// Recent returns up to limit notifications for a user, most recent first.
func (p *Publisher) Recent(userID int64, limit int) ([]models.Notification, error) {
	return p.store.Recent(userID, limit)
}

// UnreadCount returns the user's current unread notification count.
func (p *Publisher) UnreadCount(userID int64) (int, error) {
	return p.store.UnreadCount(userID)
}
