package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Minute, time.Hour)

	access, err := svc.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	id, err := svc.ParseUserID(access)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if id != 42 {
		t.Fatalf("parsed user id = %d, want 42", id)
	}

	refresh, err := svc.GenerateRefreshToken(42)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}
	if id, err := svc.ParseUserID(refresh); err != nil || id != 42 {
		t.Fatalf("parse refresh token: id=%d err=%v", id, err)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	minted := NewTokenService("secret-a", time.Minute, time.Hour)
	verifier := NewTokenService("secret-b", time.Minute, time.Hour)

	token, err := minted.GenerateAccessToken(7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseUserID(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	const secret = "unit-test-secret"
	svc := NewTokenService(secret, time.Minute, time.Hour)

	claims := jwt.MapClaims{
		"subject": map[string]any{
			"id":    float64(7),
			"roles": []string{"user"},
		},
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := svc.ParseUserID(expired); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Minute, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.ParseUserID(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: got %v, want ErrInvalidToken", token, err)
		}
	}
}
