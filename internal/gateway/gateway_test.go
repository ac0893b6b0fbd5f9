// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package gateway

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/rogeriosantos/broskate2/internal/auth"
	"github.com/rogeriosantos/broskate2/internal/models"
	"github.com/rogeriosantos/broskate2/internal/notify"
	"github.com/rogeriosantos/broskate2/internal/protocol"
	"github.com/rogeriosantos/broskate2/internal/registry"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

type testEnv struct {
	gateway   *Gateway
	registry  *registry.Registry
	publisher *notify.Publisher
	jwt       *auth.JWTManager
	server    *httptest.Server
}

func newTestEnv(t *testing.T, pathUserID int64) *testEnv {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	reg := registry.New()
	publisher := notify.NewPublisher(notify.NewMemoryStore(), reg)
	gw := New(reg, publisher, jwtManager)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gw.HandleConnection(w, r, pathUserID)
	}))
	t.Cleanup(srv.Close)

	return &testEnv{gateway: gw, registry: reg, publisher: publisher, jwt: jwtManager, server: srv}
}

func (e *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/api/v1/ws/7" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (e *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(userID, "bboy", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return frame
}

// completeHandshake reads the frames every successful connect emits before
// any other traffic: connection_established, one subscription_confirmed per
// default channel, and the unread_count flush. It returns the unread_count
// frame for tests that assert on the flushed count.
func completeHandshake(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	for i := 0; i < 3; i++ {
		readFrame(t, conn)
	}
	return readFrame(t, conn)
}

func readCloseCode(t *testing.T, conn *websocket.Conn) int {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected close error, got %v", err)
	}
	return closeErr.Code
}

func TestHandshakeMissingTokenCloses4001(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "")

	if code := readCloseCode(t, conn); code != CloseMissingToken {
		t.Errorf("close code = %d, want %d", code, CloseMissingToken)
	}
	if env.registry.IsUserConnected(7) {
		t.Error("user must not be registered after failed handshake")
	}
}

func TestHandshakeInvalidTokenCloses4003(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token=garbage")

	if code := readCloseCode(t, conn); code != CloseAuthFailed {
		t.Errorf("close code = %d, want %d", code, CloseAuthFailed)
	}
}

func TestHandshakeUserMismatchCloses4003(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 99))

	if code := readCloseCode(t, conn); code != CloseAuthFailed {
		t.Errorf("close code = %d, want %d", code, CloseAuthFailed)
	}
	if env.registry.IsUserConnected(7) || env.registry.IsUserConnected(99) {
		t.Error("no user should be registered after identity mismatch")
	}
}

func TestHandshakeSuccessFrameSequence(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))

	frame := readFrame(t, conn)
	if frame["type"] != "connection_established" {
		t.Fatalf("first frame type = %v, want connection_established", frame["type"])
	}
	if frame["message"] != "Connected to BroSkate real-time notifications" {
		t.Errorf("message = %v", frame["message"])
	}

	// The default channels are subscribed explicitly on connect, so each one
	// is confirmed on the wire before the flush.
	for _, channel := range []string{"user_7", GlobalChannel} {
		frame = readFrame(t, conn)
		if frame["type"] != "subscription_confirmed" {
			t.Fatalf("frame type = %v, want subscription_confirmed for %s", frame["type"], channel)
		}
		if frame["channel"] != channel {
			t.Errorf("channel = %v, want %s", frame["channel"], channel)
		}
	}

	frame = readFrame(t, conn)
	if frame["type"] != "unread_count" {
		t.Fatalf("frame type = %v, want unread_count", frame["type"])
	}
	if frame["count"] != float64(0) {
		t.Errorf("count = %v, want 0", frame["count"])
	}
}

func TestOfflineBacklogFlushedOnConnect(t *testing.T) {
	env := newTestEnv(t, 7)

	for i := 0; i < 5; i++ {
		if _, err := env.publisher.Send(7, models.NotificationInfo, "Stored", "while offline", nil, nil, true); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	conn := env.dial(t, "?token="+env.token(t, 7))

	frame := completeHandshake(t, conn)
	if frame["type"] != "unread_count" {
		t.Fatalf("frame type = %v, want unread_count", frame["type"])
	}
	if frame["count"] != float64(5) {
		t.Errorf("count = %v, want 5", frame["count"])
	}

	frame = readFrame(t, conn)
	if frame["type"] != "recent_notifications" {
		t.Fatalf("frame type = %v, want recent_notifications", frame["type"])
	}
	notifications, ok := frame["notifications"].([]interface{})
	if !ok || len(notifications) != 5 {
		t.Errorf("notifications = %v, want 5 entries", frame["notifications"])
	}
}

func TestPingPongEchoesTimestamp(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","timestamp":"2026-08-01T12:00:00Z"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "pong" {
		t.Fatalf("frame type = %v, want pong", frame["type"])
	}
	if frame["timestamp"] != "2026-08-01T12:00:00Z" {
		t.Errorf("timestamp = %v, want echoed value", frame["timestamp"])
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe","channel":"shop_42"}`)); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "subscription_confirmed" {
		t.Fatalf("frame type = %v, want subscription_confirmed", frame["type"])
	}
	if frame["channel"] != "shop_42" {
		t.Errorf("channel = %v, want shop_42", frame["channel"])
	}

	shop := notify.ShopInfo{ID: 42, Name: "Deck Dreams", Announcement: "Restock"}
	if err := env.publisher.NotifyShopUpdate(shop, []int64{7}); err != nil {
		t.Fatalf("NotifyShopUpdate: %v", err)
	}

	frame = readFrame(t, conn)
	if frame["type"] != "notification" {
		t.Fatalf("frame type = %v, want notification", frame["type"])
	}
	if frame["title"] != "Shop Update: Deck Dreams" {
		t.Errorf("title = %v", frame["title"])
	}
}

func TestMarkReadOverWebSocket(t *testing.T) {
	env := newTestEnv(t, 7)
	id, err := env.publisher.Send(7, models.NotificationInfo, "Stored", "m", nil, nil, true)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn) // ends with unread_count (1)
	readFrame(t, conn)         // recent_notifications

	payload := `{"type":"mark_notification_read","notification_id":"` + id + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write mark read: %v", err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != "unread_count_updated" {
		t.Fatalf("frame type = %v, want unread_count_updated", frame["type"])
	}
	if frame["count"] != float64(0) {
		t.Errorf("count = %v, want 0", frame["count"])
	}
}

func TestGetUnreadCountOverWebSocket(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"get_unread_count"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame := readFrame(t, conn)
	if frame["type"] != "unread_count" {
		t.Fatalf("frame type = %v, want unread_count", frame["type"])
	}
}

func TestMalformedFrameDoesNotKillSession(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`)); err != nil {
		t.Fatalf("write malformed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"no_type":true}`)); err != nil {
		t.Fatalf("write typeless: %v", err)
	}

	// The session must still answer pings.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	frame := readFrame(t, conn)
	if frame["type"] != "pong" {
		t.Errorf("frame type = %v, want pong", frame["type"])
	}
}

func TestDefaultChannelsGrantedOnConnect(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	completeHandshake(t, conn)

	// A channel broadcast on the global channel must arrive without any
	// explicit subscribe.
	msg := protocol.NewBroadcast(GlobalChannel, 1, "admin", map[string]interface{}{"announcement": "hello"}, time.Now())
	env.registry.BroadcastToChannel(msg, GlobalChannel)

	frame := readFrame(t, conn)
	if frame["type"] != "broadcast" {
		t.Fatalf("frame type = %v, want broadcast", frame["type"])
	}
	if frame["channel"] != GlobalChannel {
		t.Errorf("channel = %v, want %s", frame["channel"], GlobalChannel)
	}

	// Likewise the private user channel.
	msg = protocol.NewBroadcast("user_7", 1, "admin", nil, time.Now())
	env.registry.BroadcastToChannel(msg, "user_7")
	frame = readFrame(t, conn)
	if frame["channel"] != "user_7" {
		t.Errorf("channel = %v, want user_7", frame["channel"])
	}
}

func TestDisconnectUnregistersUser(t *testing.T) {
	env := newTestEnv(t, 7)
	conn := env.dial(t, "?token="+env.token(t, 7))
	readFrame(t, conn) // connection_established

	waitFor(t, func() bool { return env.registry.IsUserConnected(7) })
	_ = conn.Close()
	waitFor(t, func() bool { return !env.registry.IsUserConnected(7) })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
