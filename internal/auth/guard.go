/* Route guards: decide from the persisted token whether the user is signed in */

package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// TokenSource supplies the persisted bearer token.
type TokenSource interface {
	GetToken(ctx context.Context) string
}

// Claims is the subset of the backend's JWT payload the client reads.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Guard answers "is someone signed in" for route gating.
type Guard struct {
	tokens TokenSource
	now    func() time.Time
	logger *zap.Logger
}

func NewGuard(tokens TokenSource, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, now: time.Now, logger: logger}
}

// Authenticated is true when a token is persisted and, if it is a JWT with
// an expiry, that expiry has not passed. Opaque tokens count on presence
// alone.
func (g *Guard) Authenticated(ctx context.Context) bool {
	token := g.tokens.GetToken(ctx)
	if token == "" {
		return false
	}
	claims, ok := ParseClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return true
	}
	if !claims.ExpiresAt.Time.After(g.now()) {
		g.logger.Info("Guard.Authenticated(): persisted token has expired",
			zap.String("user_id", claims.UserID),
			zap.String("email", claims.Email),
			zap.Time("expired_at", claims.ExpiresAt.Time))
		return false
	}
	return true
}

// ParseClaims decodes token's payload without verifying it.
func ParseClaims(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
