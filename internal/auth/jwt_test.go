// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package auth

import (
	"testing"
	"time"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	token, err := m.GenerateToken(42, "bboy", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "bboy" {
		t.Errorf("Username = %q, want bboy", claims.Username)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m1, _ := NewJWTManager(testSecret, time.Hour)
	m2, _ := NewJWTManager("another-secret-key-also-32-chars-long!", time.Hour)

	token, err := m1.GenerateToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := m2.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m, _ := NewJWTManager(testSecret, -time.Minute)

	token, err := m.GenerateToken(1, "alice", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m, _ := NewJWTManager(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("expected validation to fail for %q", token)
		}
	}
}
