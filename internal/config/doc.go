// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package config provides centralized configuration management for the
BroSkate realtime service.

Configuration is loaded via Koanf v2 with layered sources, highest
priority last:

	Defaults < YAML config file < Environment variables

The config file is optional. Its path comes from CONFIG_PATH when set,
otherwise the first existing file among config.yaml, config.yml,
/etc/broskate/config.yaml, and /etc/broskate/config.yml is used.

# Configuration Structure

Settings are organized into logical groups:

  - ServerConfig: bind address, port, HTTP timeouts
  - SecurityConfig: JWT secret and TTL, rate limiting, CORS origins
  - StorageConfig: notification store backend (memory or badger) and path
  - NATSConfig: event bridge toggle, broker URL, subject prefix, queue group
  - LoggingConfig: level, format, caller annotation

# Environment Variables

Environment variables map onto config keys through an explicit table;
unrecognized variables are ignored rather than guessed at:

	HTTP_HOST                server.host          (default 0.0.0.0)
	HTTP_PORT                server.port          (default 8000)
	JWT_SECRET               security.jwt_secret  (required, min 32 chars)
	TOKEN_TTL                security.token_ttl   (default 24h)
	RATE_LIMIT_REQS          security.rate_limit_reqs
	RATE_LIMIT_WINDOW        security.rate_limit_window
	RATE_LIMIT_DISABLED      security.rate_limit_disabled
	CORS_ORIGINS             security.cors_origins (comma-separated)
	NOTIFICATION_STORE       storage.backend      (memory | badger)
	NOTIFICATION_STORE_PATH  storage.path
	NATS_ENABLED             nats.enabled
	NATS_URL                 nats.url
	NATS_SUBJECT_PREFIX      nats.subject_prefix  (default broskate.events)
	NATS_QUEUE_GROUP         nats.queue_group     (default notifiers)
	LOG_LEVEL                logging.level
	LOG_FORMAT               logging.format       (json | console)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("config: %v", err)
	}
	fmt.Printf("listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

Validation runs inside Load: the JWT secret must be present and at least
32 characters, the storage backend must be a known value, and enabling
NATS without a URL is rejected at startup rather than at first use.

The Config struct is immutable after Load returns and safe for concurrent
reads.
*/
package config
