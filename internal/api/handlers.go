// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rogeriosantos/broskate2/internal/auth"
	"github.com/rogeriosantos/broskate2/internal/gateway"
	"github.com/rogeriosantos/broskate2/internal/models"
	"github.com/rogeriosantos/broskate2/internal/notify"
	"github.com/rogeriosantos/broskate2/internal/protocol"
	"github.com/rogeriosantos/broskate2/internal/registry"
)

// Handlers holds the HTTP handler implementations and their dependencies.
type Handlers struct {
	registry  *registry.Registry
	publisher *notify.Publisher
	gateway   *gateway.Gateway
}

// NewHandlers creates the handler set.
func NewHandlers(reg *registry.Registry, publisher *notify.Publisher, gw *gateway.Gateway) *Handlers {
	return &Handlers{
		registry:  reg,
		publisher: publisher,
		gateway:   gw,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "broskate-realtime",
	})
}

// WebSocket upgrades the request into a realtime session for the path user.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "user_id must be an integer", err)
		return
	}
	h.gateway.HandleConnection(w, r, userID)
}

// Connections reports who is currently connected, and whether the caller is.
func (h *Handlers) Connections(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"connected_users":   h.registry.ConnectedUsers(),
		"total_connections": h.registry.ConnectionCount(),
		"is_connected":      h.registry.IsUserConnected(claims.UserID),
	})
}

// broadcastRequest is the body of a channel broadcast: an arbitrary JSON
// object relayed to subscribers verbatim.
type broadcastRequest map[string]interface{}

// Broadcast relays a message to every subscriber of the path channel.
// Admin-only.
func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	channel := chi.URLParam(r, "channel")
	if channel == "" {
		respondError(w, http.StatusBadRequest, "INVALID_CHANNEL", "channel is required", nil)
		return
	}

	var body broadcastRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", err)
		return
	}

	msg := protocol.NewBroadcast(channel, claims.UserID, claims.Username, body, time.Now())
	h.registry.BroadcastToChannel(msg, channel)

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Broadcast sent to channel: %s", channel),
	})
}

// notifyRequest is the body of a direct notification send.
type notifyRequest struct {
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// NotifyUser sends a direct notification to the path user, attributed to the
// caller.
func (h *Handlers) NotifyUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "user_id must be an integer", err)
		return
	}

	var body notifyRequest
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object", err)
		return
	}

	typ := models.NotificationType(body.Type)
	if body.Type == "" {
		typ = models.NotificationInfo
	}
	if !typ.Valid() {
		respondError(w, http.StatusBadRequest, "INVALID_TYPE", fmt.Sprintf("unknown notification type %q", body.Type), nil)
		return
	}
	title := body.Title
	if title == "" {
		title = "New Notification"
	}

	id, err := h.publisher.Send(userID, typ, title, body.Message, body.Data, &claims.UserID, true)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SEND_FAILED", "failed to send notification", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"message":         fmt.Sprintf("Notification sent to user %d", userID),
		"notification_id": id,
	})
}

// Notifications lists the caller's notification history, most recent first.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	limit := getIntParam(r, "limit", 50)
	if limit < 1 || limit > notify.MaxStoredPerUser {
		limit = 50
	}

	notifications, err := h.publisher.Recent(claims.UserID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to read notifications", err)
		return
	}
	unread, err := h.publisher.UnreadCount(claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to read unread count", err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// UnreadCount reports the caller's unread notification total.
func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	unread, err := h.publisher.UnreadCount(claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to read unread count", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"unread_count": unread,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	notificationID := chi.URLParam(r, "notification_id")
	found, err := h.publisher.MarkAsRead(claims.UserID, notificationID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to mark notification read", err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "notification not found", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks the caller's entire history as read.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication claims", nil)
		return
	}

	marked, err := h.publisher.MarkAllAsRead(claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to mark notifications read", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"message": "All notifications marked as read",
		"marked":  marked,
	})
}
