package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	t.Parallel()

	verifier := MustNew(Config{JWTSecret: testSecret})
	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": float64(42),
		"role":   "customer",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	identity, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if identity.UserID != 42 {
		t.Errorf("UserID = %d, want 42", identity.UserID)
	}
	if identity.Role != "customer" {
		t.Errorf("Role = %q, want customer", identity.Role)
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	t.Parallel()

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": float64(1)}).
		SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	verifier := MustNew(Config{JWTSecret: testSecret})
	if _, err := verifier.Verify(other); !errors.Is(err, contractx.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	verifier := MustNew(Config{JWTSecret: testSecret})
	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": float64(42),
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	t.Parallel()

	verifier := MustNew(Config{JWTSecret: testSecret})
	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"role": "customer"})

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected error for missing userId claim")
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewVerifier(Config{JWTSecret: "   "}); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
