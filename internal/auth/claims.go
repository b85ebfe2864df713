package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nvoloshin/userhub/internal/infrastructure/config"
)

// TokenKind discriminates the two halves of a token pair. The kind is
// embedded in the signed claims so an access token can never be replayed
// as a refresh token or vice versa.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims extends JWT standard claims with UserHub-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64     `json:"user_id"`
	Kind   TokenKind `json:"token_type"`
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Codec signs and verifies JWT tokens. All expiry arithmetic is done in
// UTC; the service timezone setting only affects display, never validity.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a token codec from JWT configuration. Only HMAC signing
// methods are accepted — asymmetric algorithms would need key material the
// configuration has no way to carry.
func NewCodec(cfg config.JWTConfig) (*Codec, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC variant", cfg.Algorithm)
	}

	return &Codec{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  cfg.AccessTTL(),
		refreshTTL: cfg.RefreshTTL(),
	}, nil
}

// Issue creates a signed token of the given kind for a user.
func (c *Codec) Issue(userID int64, kind TokenKind) (string, error) {
	ttl := c.accessTTL
	if kind == TokenRefresh {
		ttl = c.refreshTTL
	}

	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Kind:   kind,
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", kind, err)
	}
	return signed, nil
}

// IssuePair creates a fresh access/refresh token pair for a user.
func (c *Codec) IssuePair(userID int64) (*TokenPair, error) {
	access, err := c.Issue(userID, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := c.Issue(userID, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Parse validates a token's signature and expiry and returns its claims.
// An expired token returns ErrTokenExpired; any other defect returns
// ErrTokenInvalid.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}
	if claims.Kind != TokenAccess && claims.Kind != TokenRefresh {
		return nil, fmt.Errorf("%w: unknown token kind %q", ErrTokenInvalid, claims.Kind)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrTokenInvalid)
	}

	return claims, nil
}
