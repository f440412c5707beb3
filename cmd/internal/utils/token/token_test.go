package token_test

import (
	"agenda/cmd/internal/utils/token"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndParse(t *testing.T) {
	signer := token.NewSigner("test-secret")

	raw, err := signer.Sign("session-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, err := signer.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("SessionID = %q, want session-1", claims.SessionID)
	}
}

func TestParseRejects(t *testing.T) {
	signer := token.NewSigner("test-secret")

	expired, _ := signer.Sign("session-1", time.Now().Add(-time.Minute))
	foreign, _ := token.NewSigner("other-secret").Sign("session-1", time.Now().Add(time.Hour))
	noSession, _ := signer.Sign("", time.Now().Add(time.Hour))
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, token.Claims{
		SessionID:        "session-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "expired", raw: expired},
		{name: "signed with another key", raw: foreign},
		{name: "missing session id", raw: noSession},
		{name: "alg none", raw: unsigned},
		{name: "garbage", raw: "not.a.token"},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := signer.Parse(tt.raw); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}
