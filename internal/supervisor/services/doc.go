// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package services adapts long-running components to suture's Service
contract: Serve blocks until the component stops or the context is
canceled, and returning an error triggers a supervised restart.

HTTPServerService wraps *http.Server, translating context cancellation into
a graceful Shutdown with its own timeout.
*/
package services
