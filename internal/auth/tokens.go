package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Payload identifies the token subject.
type Payload struct {
	UserID string
	Email  string
}

// Claims is the JWT body.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Type   string `json:"typ"`
}

// TokenConfig holds signing secrets and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer builds an issuer, applying 1h and 7d lifetimes when unset.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// AccessTTL is the access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.cfg.AccessTTL }

// RefreshTTL is the refresh token lifetime.
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

// IssueAccess signs a short-lived access token.
func (i *TokenIssuer) IssueAccess(p Payload) (string, error) {
	return i.sign(p, tokenTypeAccess, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token.
func (i *TokenIssuer) IssueRefresh(p Payload) (string, error) {
	return i.sign(p, tokenTypeRefresh, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

// IssuePair signs both tokens.
func (i *TokenIssuer) IssuePair(p Payload) (Tokens, error) {
	access, err := i.IssueAccess(p)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := i.IssueRefresh(p)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token.
func (i *TokenIssuer) VerifyAccess(token string) (Payload, error) {
	return i.verify(token, tokenTypeAccess, i.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token.
func (i *TokenIssuer) VerifyRefresh(token string) (Payload, error) {
	return i.verify(token, tokenTypeRefresh, i.cfg.RefreshSecret)
}

func (i *TokenIssuer) sign(p Payload, typ, secret string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: p.UserID,
		Email:  p.Email,
		Type:   typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (i *TokenIssuer) verify(token, typ, secret string) (Payload, error) {
	if token == "" {
		return Payload{}, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return Payload{}, ErrInvalidToken
	}
	if claims.Type != typ || claims.UserID == "" {
		return Payload{}, ErrInvalidToken
	}
	return Payload{UserID: claims.UserID, Email: claims.Email}, nil
}
