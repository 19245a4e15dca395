package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/neomorfeo/randomnum/internal/domain"
)

const tokenIssuer = "randomnum"

type callerKey struct{}

// Caller returns the identity the gate resolved for the request, or the
// anonymous identity when none was resolved.
func Caller(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(callerKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Anonymous
}

// Gate resolves the caller identity from an HS256 bearer token whose subject
// is the hex-encoded identity. Requests without a token are anonymous.
type Gate struct {
	secret []byte
	now    func() time.Time
}

// NewGate returns a Gate verifying tokens signed with secret. An empty
// secret disables verification: every caller is anonymous and any
// presented token is rejected.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for id valid for ttl.
func (g *Gate) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	if len(g.secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	now := g.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Resolve returns the identity carried by a bearer token.
func (g *Gate) Resolve(token string) (domain.Identity, error) {
	if len(g.secret) == 0 {
		return "", errors.New("token verification is disabled")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	id, err := domain.ParseIdentity(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	return id, nil
}

// Middleware attaches the caller identity to the request context. A token
// that fails verification is answered with 401.
func (g *Gate) Middleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			next(huma.WithValue(ctx, callerKey{}, domain.Anonymous))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authorization must be a bearer token")
			return
		}

		id, err := g.Resolve(strings.TrimSpace(token))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next(huma.WithValue(ctx, callerKey{}, id))
	}
}
