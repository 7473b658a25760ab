package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, userID := range []string{
		"6f1c7d4e-2b4a-4f0e-9d59-0a1b2c3d4e5f",
		"42",
		"user-with-dashes",
	} {
		token, err := issuer.Issue(userID)
		if err != nil {
			t.Fatalf("Issue(%q) unexpected error: %v", userID, err)
		}

		got, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify() unexpected error: %v", err)
		}
		if got != userID {
			t.Errorf("Verify() = %q, want %q", got, userID)
		}
	}
}

func TestIssueTokensDiffer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	first, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	second, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	if first == second {
		t.Error("Issue() returned byte-identical tokens for consecutive calls")
	}
}

func TestIssueSetsClaims(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", 90*24*time.Hour).WithClock(func() time.Time { return now })

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt.Time, now)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(90 * 24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want 90 days after issue", claims.ExpiresAt.Time)
	}
	if claims.ID == "" {
		t.Error("token id (jti) should be set")
	}
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.WithClock(func() time.Time { return issued }).Issue("alice")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	_, err = issuer.Verify(token)
	if err != ErrExpiredToken {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyInvalid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	foreign, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-valid-token"},
		{name: "empty", token: ""},
		{name: "wrong secret", token: foreign},
		{name: "wrong issuer", token: signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "someone-else",
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
		{name: "wrong audience", token: signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{"other-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
		{name: "missing subject", token: signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
		{name: "missing expiry", token: signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:  "alice",
			Issuer:   tokenIssuer,
			Audience: jwt.ClaimStrings{tokenAudience},
		})},
		{name: "other hmac algorithm", token: signClaims(t, "test-secret", jwt.SigningMethodHS512, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
		{name: "none algorithm", token: signNone(t, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if err != ErrInvalidToken {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}
	return token
}

func signNone(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}
	return token
}
