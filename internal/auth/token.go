// Package auth verifies actor tokens issued by the identity provider and
// carries the resulting actor through request contexts.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated caller of a request.
type Actor struct {
	ID       int64
	Verified bool
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret, ttl: 24 * time.Hour, now: time.Now}
}

// WithTTL returns a copy of t issuing tokens valid for ttl.
func (t *Tokens) WithTTL(ttl time.Duration) *Tokens {
	c := *t
	c.ttl = ttl
	return &c
}

// Issue signs an HS256 token for the user.
func (t *Tokens) Issue(userID int64, verified bool) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("JWT secret not set")
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(userID, 10),
		"verified": verified,
		"iat":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	})
	return token.SignedString(t.secret)
}

func (t *Tokens) Parse(tokenStr string) (Actor, error) {
	if len(t.secret) == 0 {
		return Actor{}, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return Actor{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, ErrInvalidToken
	}
	verified, _ := claims["verified"].(bool)
	return Actor{ID: id, Verified: verified}, nil
}

type contextKey string

const actorContextKey contextKey = "actor"

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}
