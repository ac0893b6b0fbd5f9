// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package models defines the domain types shared across the realtime service:
the Notification record with its type vocabulary, and the uniform REST
response envelope.

Types here carry no behavior beyond validation; the packages that move
notifications around (notify, protocol, api) all speak these structs.
*/
package models
