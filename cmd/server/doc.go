// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package main is the entry point for the BroSkate realtime notification
server.

The service delivers notifications to skaters over WebSocket connections:
new followers, spot drops near you, shop announcements, event changes, and
direct messages. The rest of the BroSkate backend feeds it domain events
over NATS; clients connect over WebSocket and manage history over REST.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("broskate-realtime")
	├── MessagingSupervisor ("messaging-layer")
	│   └── NATS event bridge (when NATS_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP server (WebSocket gateway + REST + /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with YAML file and environment variables
 2. Logging: zerolog with JSON or console output
 3. Notification store: in-memory or BadgerDB, per NOTIFICATION_STORE
 4. Connection registry, publisher, and WebSocket gateway
 5. Auth middleware: JWT validation, rate limiting, CORS
 6. Chi router and HTTP server
 7. Supervisor tree and signal handling

# Configuration

Core environment variables:

	HTTP_PORT=8000                 # listen port
	JWT_SECRET=<32+ chars>         # required
	NOTIFICATION_STORE=memory      # memory or badger
	NOTIFICATION_STORE_PATH=/data/notifications
	NATS_ENABLED=false             # enable the domain event bridge
	NATS_URL=nats://127.0.0.1:4222
	LOG_LEVEL=info
	LOG_FORMAT=json

See internal/config for the complete reference.

# Signal Handling

The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
stops accepting connections and drains in-flight requests, the NATS bridge
drains its subscriptions, and any services that fail to stop within the
shutdown timeout are reported before exit.

# Usage

Development, in-memory store:

	export JWT_SECRET=$(openssl rand -base64 32)
	go run ./cmd/server

Production, durable store plus event bridge:

	export JWT_SECRET=... NOTIFICATION_STORE=badger \
	       NOTIFICATION_STORE_PATH=/data/notifications \
	       NATS_ENABLED=true NATS_URL=nats://nats:4222
	./broskate-realtime
*/
package main
