// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package supervisor builds the Suture v4 supervision tree that keeps the
realtime service's long-running components alive.

	RootSupervisor ("broskate-realtime")
	├── MessagingSupervisor ("messaging-layer")
	│   └── NATS event bridge (optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Failed services are restarted with exponential backoff; failure rates
beyond the configured threshold propagate up the tree. Supervisor events
are logged through slog via the sutureslog hook.
*/
package supervisor
