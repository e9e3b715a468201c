package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("expected correct password to verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("expected wrong password to fail verification")
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	mgr := NewTokenManager("test-signing-key", time.Hour)
	userID := uuid.New()

	token, err := mgr.Issue(userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != userID {
		t.Errorf("expected user ID %s, got %s", userID, got)
	}
}

func TestTokenVerifyRejectsTampering(t *testing.T) {
	mgr := NewTokenManager("test-signing-key", time.Hour)
	other := NewTokenManager("different-key", time.Hour)

	token, err := mgr.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
		mgr   *TokenManager
	}{
		{"wrong signing key", token, other},
		{"malformed token", "not.a.token", mgr},
		{"empty token", "", mgr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.mgr.Verify(tt.token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	mgr := NewTokenManager("test-signing-key", -time.Minute)
	mgr.ttl = -time.Minute

	token, err := mgr.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := mgr.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
