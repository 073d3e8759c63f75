package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/farmdirect/api/internal/clock"
	"github.com/farmdirect/api/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated principal carried by a verified token.
type Identity struct {
	UserID string
	Role   domain.UserRole
}

// Issuer signs and verifies HMAC bearer tokens for API access.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

const defaultTokenTTL = 24 * time.Hour

func NewIssuer(secret []byte, clk clock.Clock) *Issuer {
	return &Issuer{
		secret: secret,
		ttl:    defaultTokenTTL,
		clock:  clk,
	}
}

func (i *Issuer) Issue(user domain.User) (string, error) {
	now := i.clock.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	return Identity{
		UserID: sub,
		Role:   domain.UserRole(role),
	}, nil
}
