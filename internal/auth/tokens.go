package auth

import (
	"errors"
	"strings"
	"time"

	"pickleball/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenConfig holds the signing secrets and lifetimes for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
	Now           func() time.Time
}

// Claims is the verified identity carried by a token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenIssuer struct {
	cfg TokenConfig
}

func newTokenIssuer(cfg TokenConfig) *tokenIssuer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &tokenIssuer{cfg: cfg}
}

func (t *tokenIssuer) issue(userID uuid.UUID, email string) (TokenPair, error) {
	access, err := t.sign(userID, email, t.cfg.AccessSecret, t.cfg.AccessExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(userID, email, t.cfg.RefreshSecret, t.cfg.RefreshExpiry)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *tokenIssuer) sign(userID uuid.UUID, email, secret string, ttl time.Duration) (string, error) {
	now := t.cfg.Now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// A unique jti keeps two tokens issued in the same second distinct.
			ID: uuid.NewString(),
		},
		ID:    userID.String(),
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (t *tokenIssuer) parseAccess(raw string) (Claims, error) {
	return t.parse(raw, t.cfg.AccessSecret)
}

func (t *tokenIssuer) parseRefresh(raw string) (Claims, error) {
	return t.parse(raw, t.cfg.RefreshSecret)
}

func (t *tokenIssuer) parse(raw, secret string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, apperr.Unauthenticated("token is required")
	}
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.cfg.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	userID, err := uuid.Parse(parsed.ID)
	if err != nil {
		return Claims{}, apperr.Unauthenticated("token subject is invalid")
	}
	return Claims{
		UserID:    userID,
		Email:     parsed.Email,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperr.Unauthenticated("token has expired")
	}
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperr.Unauthenticated("token signature is invalid")
	}
	return apperr.Unauthenticated("token is invalid")
}
