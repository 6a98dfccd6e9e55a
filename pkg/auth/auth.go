// Package auth verifies HMAC-signed bearer credentials.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type Config struct {
	JWTSecret string `envconfig:"JWT_SECRET" split_words:"true" required:"true"`
}

// Verifier validates HS256 tokens carrying a numeric userId claim.
type Verifier struct {
	secret []byte
}

var _ contractx.Verifier = (*Verifier)(nil)

func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func MustNew(cfg Config) *Verifier {
	verifier, err := NewVerifier(cfg)
	if err != nil {
		panic(err)
	}
	return verifier
}

func (v *Verifier) Verify(token string) (contractx.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return contractx.Identity{}, fmt.Errorf("%w: parse token: %v", contractx.ErrUnauthenticated, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return contractx.Identity{}, fmt.Errorf("%w: unexpected claims type", contractx.ErrUnauthenticated)
	}

	userID, ok := claims["userId"].(float64)
	if !ok || userID <= 0 {
		return contractx.Identity{}, fmt.Errorf("%w: no usable userId claim", contractx.ErrUnauthenticated)
	}

	role, _ := claims["role"].(string)
	return contractx.Identity{UserID: int64(userID), Role: role}, nil
}
