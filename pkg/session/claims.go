package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tableflip.dev/moodlog/pkg/model"
)

// Claims are the JWT claims the journal server puts in its tokens.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// ErrOpaqueToken means the token is not a JWT the client can read.
var ErrOpaqueToken = errors.New("session: token is not a readable JWT")

// PeekClaims decodes a token's claims without verifying its signature. The
// client only uses them to recover the user and to notice expiry early.
func PeekClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrOpaqueToken
	}
	return claims, nil
}

// UserFromToken recovers the user a token was issued to.
func UserFromToken(token string) (*model.User, error) {
	claims, err := PeekClaims(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingUser
	}
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	return &model.User{ID: claims.Subject, Username: username, IsAdmin: claims.IsAdmin}, nil
}

// Expired reports whether token carries an exp claim earlier than now.
// Opaque tokens never expire from the client's point of view.
func Expired(token string, now time.Time) bool {
	claims, err := PeekClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}
