// Package auth mints and validates session credentials: HS256 JWTs carrying
// the user id, signed with a secret injected at construction.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
)

// Validation failures. Transports collapse all of them into one
// "not authorized" answer; the distinction is for logs.
var (
	ErrMalformed        = common.ErrInvalidToken
	ErrInvalidSignature = common.ErrInvalidSignature
	ErrExpired          = common.ErrTokenExpired
)

// Claims are the session claims. Subject and UserID both hold the user id;
// UserID keeps older clients that read "uid" working.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*Issuer)

func WithIssuer(name string) Option { return func(i *Issuer) { i.issuer = name } }

// WithClock replaces time.Now for both minting and validation.
func WithClock(now func() time.Time) Option { return func(i *Issuer) { i.now = now } }

// NewIssuer fails with common.ErrConfig on an empty secret or non-positive ttl.
func NewIssuer(secret string, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, common.ErrConfig.WithCause(errors.New("empty jwt secret"))
	}
	if ttl <= 0 {
		return nil, common.ErrConfig.WithCause(errors.New("session ttl must be positive"))
	}
	i := &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// TTL is the lifetime of minted sessions.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Mint signs a session for userID valid for the issuer's TTL.
func (i *Issuer) Mint(userID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Truncate(time.Second), nil
}

// Validate returns the user id asserted by tokenString.
func (i *Issuer) Validate(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		default:
			return "", ErrMalformed
		}
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return "", ErrMalformed
	}
	return userID, nil
}
