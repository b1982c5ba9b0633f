package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Minter produces token strings for new sessions and does a cheap
// structural check on presented ones before the active-set lookup.
type Minter interface {
	Mint(issuedAt, expiresAt time.Time) (string, error)
	Check(token string) error
}

// RandomMinter issues 256-bit random tokens, base64url encoded.
type RandomMinter struct{}

func (RandomMinter) Mint(time.Time, time.Time) (string, error) {
	const size = 32

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (RandomMinter) Check(string) error { return nil }

// JWTMinter issues HS256-signed tokens. Check rejects forged strings before
// the active set is consulted. The exp claim is not validated; the
// Authority's own clock decides expiry.
type JWTMinter struct {
	key []byte
}

func NewJWTMinter(key []byte) (*JWTMinter, error) {
	if len(key) == 0 {
		return nil, errors.New("session: empty signing key")
	}
	return &JWTMinter{key: key}, nil
}

func (m *JWTMinter) Mint(issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTMinter) Check(token string) error {
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(*jwt.Token) (interface{}, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return err
}
