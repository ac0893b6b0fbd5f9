// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket connection metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Current number of live WebSocket connections",
		},
	)

	WSUsersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_users_connected",
			Help: "Current number of distinct users with at least one live connection",
		},
	)

	WSAuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_auth_failures_total",
			Help: "Total WebSocket connections rejected during authentication",
		},
		[]string{"reason"}, // "missing_token", "invalid_token", "identity_mismatch"
	)

	// Message dispatch metrics
	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_messages_received_total",
			Help: "Total inbound WebSocket messages by type tag",
		},
		[]string{"type"},
	)

	WSMessagesMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_messages_malformed_total",
			Help: "Total inbound WebSocket frames that failed to decode",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_messages_dropped_total",
			Help: "Total outbound messages dropped due to a full or closed send queue",
		},
	)

	// Notification metrics
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total notifications originated via the publisher",
		},
		[]string{"type"},
	)

	NotificationsDeliveredLive = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_delivered_live_total",
			Help: "Total notifications pushed immediately to a connected user",
		},
	)

	NotificationsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_stored_total",
			Help: "Total notifications persisted to the store",
		},
	)

	ChannelBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channel_broadcasts_total",
			Help: "Total channel broadcast operations",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)
