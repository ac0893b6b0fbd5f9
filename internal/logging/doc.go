// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package logging provides centralized zerolog-based logging for BroSkate.

The package exposes a process-global logger configured once at startup:

	logging.Init(logging.Config{
	    Level:  "info",
	    Format: "json",
	})

	logging.Info().Int64("user_id", uid).Msg("user connected")
	logging.Error().Err(err).Msg("delivery failed")

Always terminate log chains with .Msg() or .Send(), and prefer structured
fields over string formatting.

NewSlogLogger bridges to log/slog for libraries that expect it (the
supervisor's sutureslog hook); records pass through to the same zerolog
sink with levels mapped.
*/
package logging
