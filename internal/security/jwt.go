package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the claims carried by a short-lived access token. Access
// tokens authorize API calls directly and are never checked against the
// session store.
type AccessClaims struct {
	Username string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token. The SessionId
// claim pairs the token with a server-side session record; a refresh token
// alone never authorizes anything without a store-backed liveness check.
type RefreshClaims struct {
	SessionID string `json:"SessionId,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access and refresh tokens. Both token kinds
// share the signing key and HS256, but differ structurally: access tokens
// carry name and role claims, refresh tokens carry a SessionId claim.
type TokenCodec struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration

	now func() time.Time
}

// DefaultAccessTokenTTL is the access token lifetime used when the caller
// passes a non-positive TTL.
const DefaultAccessTokenTTL = 10 * time.Minute

func NewTokenCodec(secret, issuer, audience string, accessTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &TokenCodec{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// IssueAccessToken signs an access token for userID with a fresh jti and the
// configured short lifetime.
func (c *TokenCodec) IssueAccessToken(username, userID string, roles []string) (string, error) {
	now := c.now()
	claims := AccessClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			Audience:  []string{c.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// IssueRefreshToken signs a refresh token bound to sessionID. The expiry is
// taken verbatim from the caller so it always matches the session record.
func (c *TokenCodec) IssueRefreshToken(sessionID uuid.UUID, userID string, expiresAt time.Time) (string, error) {
	claims := RefreshClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			Audience:  []string{c.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// TryParseRefreshToken verifies signature, issuer, audience and lifetime.
// Failure is an ordinary outcome of untrusted input, so it reports ok=false
// instead of an error; callers cannot distinguish why verification failed.
func (c *TokenCodec) TryParseRefreshToken(raw string) (*RefreshClaims, bool) {
	claims := &RefreshClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, false
	}
	return claims, true
}

// ParseAccessToken verifies an access token presented on an API call.
func (c *TokenCodec) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing algorithm")
	}
	return c.secret, nil
}
