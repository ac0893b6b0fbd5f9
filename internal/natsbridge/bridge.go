// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package natsbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/rogeriosantos/broskate2/internal/config"
	"github.com/rogeriosantos/broskate2/internal/logging"
	"github.com/rogeriosantos/broskate2/internal/notify"
)

// Subject suffixes under the configured prefix.
const (
	subjectFollow = "follow"
	subjectSpot   = "spot"
	subjectShop   = "shop"
	subjectEvent  = "event"
	subjectDirect = "direct"
)

// Bridge consumes domain events from NATS and feeds the notification
// publisher. It implements suture.Service; the supervisor restarts it when
// the broker connection is lost for good.
type Bridge struct {
	cfg       config.NATSConfig
	publisher *notify.Publisher
}

// New creates a bridge over the given publisher.
func New(cfg config.NATSConfig, publisher *notify.Publisher) *Bridge {
	return &Bridge{cfg: cfg, publisher: publisher}
}

// String names the service in supervisor logs.
func (b *Bridge) String() string {
	return "natsbridge"
}

// Serve connects to the broker, subscribes to all event subjects in a queue
// group so horizontally scaled instances share the work, and blocks until
// the context is canceled.
func (b *Bridge) Serve(ctx context.Context) error {
	nc, err := nats.Connect(b.cfg.URL,
		nats.Name("broskate-realtime"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", b.cfg.URL, err)
	}
	defer nc.Close()

	handlers := map[string]nats.MsgHandler{
		subjectFollow: b.handleFollow,
		subjectSpot:   b.handleSpot,
		subjectShop:   b.handleShop,
		subjectEvent:  b.handleEvent,
		subjectDirect: b.handleDirect,
	}

	for suffix, handler := range handlers {
		subject := b.cfg.SubjectPrefix + "." + suffix
		sub, err := nc.QueueSubscribe(subject, b.cfg.QueueGroup, handler)
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		defer func() { _ = sub.Unsubscribe() }()
		logging.Info().Str("subject", subject).Str("queue", b.cfg.QueueGroup).Msg("subscribed to event subject")
	}

	<-ctx.Done()

	if err := nc.Drain(); err != nil {
		logging.Error().Err(err).Msg("failed to drain NATS connection")
	}
	return ctx.Err()
}

type followEvent struct {
	FollowerID       int64  `json:"follower_id"`
	FollowedUserID   int64  `json:"followed_user_id"`
	FollowerUsername string `json:"follower_username"`
}

func (b *Bridge) handleFollow(msg *nats.Msg) {
	var ev followEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logging.Error().Err(err).Str("subject", msg.Subject).Msg("malformed follow event")
		return
	}
	if err := b.publisher.NotifyFollow(ev.FollowerID, ev.FollowedUserID, ev.FollowerUsername); err != nil {
		logging.Error().Err(err).Int64("user_id", ev.FollowedUserID).Msg("failed to publish follow notification")
	}
}

type spotEvent struct {
	Spot struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"spot"`
	NearbyUserIDs []int64 `json:"nearby_user_ids"`
}

func (b *Bridge) handleSpot(msg *nats.Msg) {
	var ev spotEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logging.Error().Err(err).Str("subject", msg.Subject).Msg("malformed spot event")
		return
	}
	spot := notify.SpotInfo{ID: ev.Spot.ID, Name: ev.Spot.Name}
	if err := b.publisher.NotifySpotCreated(spot, ev.NearbyUserIDs); err != nil {
		logging.Error().Err(err).Int64("spot_id", spot.ID).Msg("failed to publish spot notifications")
	}
}

type shopEvent struct {
	Shop struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Announcement string `json:"announcement"`
	} `json:"shop"`
	MemberIDs []int64 `json:"member_ids"`
}

func (b *Bridge) handleShop(msg *nats.Msg) {
	var ev shopEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logging.Error().Err(err).Str("subject", msg.Subject).Msg("malformed shop event")
		return
	}
	shop := notify.ShopInfo{ID: ev.Shop.ID, Name: ev.Shop.Name, Announcement: ev.Shop.Announcement}
	if err := b.publisher.NotifyShopUpdate(shop, ev.MemberIDs); err != nil {
		logging.Error().Err(err).Int64("shop_id", shop.ID).Msg("failed to publish shop notifications")
	}
}

type eventUpdateEvent struct {
	Event struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"event"`
	AttendeeIDs []int64 `json:"attendee_ids"`
}

func (b *Bridge) handleEvent(msg *nats.Msg) {
	var ev eventUpdateEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logging.Error().Err(err).Str("subject", msg.Subject).Msg("malformed event update")
		return
	}
	event := notify.EventInfo{ID: ev.Event.ID, Title: ev.Event.Title, Date: ev.Event.Date}
	if err := b.publisher.NotifyEventUpdate(event, ev.AttendeeIDs); err != nil {
		logging.Error().Err(err).Int64("event_id", event.ID).Msg("failed to publish event notifications")
	}
}

type directMessageEvent struct {
	SenderID       int64  `json:"sender_id"`
	RecipientID    int64  `json:"recipient_id"`
	SenderUsername string `json:"sender_username"`
	Preview        string `json:"preview"`
}

func (b *Bridge) handleDirect(msg *nats.Msg) {
	var ev directMessageEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logging.Error().Err(err).Str("subject", msg.Subject).Msg("malformed direct message event")
		return
	}
	if err := b.publisher.NotifyDirectMessage(ev.SenderID, ev.RecipientID, ev.SenderUsername, ev.Preview); err != nil {
		logging.Error().Err(err).Int64("user_id", ev.RecipientID).Msg("failed to publish message notification")
	}
}
