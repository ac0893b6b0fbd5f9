// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package natsbridge subscribes to domain events published by the rest of the
BroSkate backend and turns them into user notifications. It is the inbound
edge of the realtime service: follows, spot and shop updates, event changes,
and direct messages all arrive here as NATS messages.

# Subjects

Subjects are {prefix}.{kind} with the prefix taken from configuration
(default broskate.events):

	broskate.events.follow   {"follower_id", "followed_user_id", "follower_username"}
	broskate.events.spot     {"spot": {"id", "name"}, "nearby_user_ids": [...]}
	broskate.events.shop     {"shop": {"id", "name", "announcement"}, "member_ids": [...]}
	broskate.events.event    {"event": {"id", "title", "date"}, "attendee_ids": [...]}
	broskate.events.direct   {"sender_id", "recipient_id", "sender_username", "preview"}

Subscriptions use a queue group so horizontally scaled instances split the
work instead of duplicating notifications.

# Lifecycle

Bridge implements suture.Service: Serve connects (with unlimited
reconnects), installs the queue subscriptions, and blocks on the context.
Shutdown drains the connection so in-flight messages finish before the
subscriptions close. Malformed event payloads are logged and dropped; they
never take the bridge down.
*/
package natsbridge
