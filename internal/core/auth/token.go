package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, wrong kind, expired, malformed. Callers get one kind only.
var ErrInvalidToken = errors.New("invalid token")

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Claims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"` // mirrors the signing kind
	jwt.RegisteredClaims
}

type KindConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Tokens issues and verifies the two disjoint token kinds. Each kind signs
// with its own secret, so a refresh token can never verify as an access
// token even before the purpose claim is checked.
type Tokens struct {
	Issuer  string
	Type    string // token type label, e.g. "Bearer"
	Access  KindConfig
	Refresh KindConfig
}

func (t *Tokens) kindConfig(k Kind) (KindConfig, error) {
	switch k {
	case KindAccess:
		return t.Access, nil
	case KindRefresh:
		return t.Refresh, nil
	}
	return KindConfig{}, fmt.Errorf("unknown token kind %q", k)
}

func (t *Tokens) Issue(uid, email string, k Kind) (string, error) {
	cfg, err := t.kindConfig(k)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		UID:     uid,
		Email:   email,
		Purpose: string(k),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

func (t *Tokens) Verify(tokenStr string, k Kind) (*Claims, error) {
	cfg, err := t.kindConfig(k)
	if err != nil {
		return nil, err
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, ErrInvalidToken
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.Purpose != string(k) {
		return nil, ErrInvalidToken
	}
	return c, nil
}
