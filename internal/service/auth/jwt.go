package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

const (
	AccessTokenType = "access"
	clockSkew       = 30 * time.Second
)

// JWTManager signs and verifies HS256 session tokens for admins and students.
type JWTManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
}

func NewJWTManager(secretKey, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		key:    []byte(secretKey),
		issuer: issuer,
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

type AccessTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Roles     []string  `json:"roles"`
	jwt.RegisteredClaims
}

func (j *JWTManager) TTL() time.Duration {
	return j.ttl
}

// Generate issues a token carrying the user's roles. Each token gets its own jti.
func (j *JWTManager) Generate(userID uuid.UUID, roles []string) (string, error) {
	issuedAt := time.Now()
	claims := AccessTokenClaims{
		TokenType: AccessTokenType,
		UserID:    userID,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (j *JWTManager) AccessClaims(tokenStr string) (*AccessTokenClaims, error) {
	var claims AccessTokenClaims
	_, err := j.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return j.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, app_errors.ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("parse access token: %w", err)
	case claims.TokenType != AccessTokenType:
		return nil, fmt.Errorf("token type %q is not %q", claims.TokenType, AccessTokenType)
	case claims.Subject != claims.UserID.String():
		return nil, errors.New("token subject does not match user")
	}
	return &claims, nil
}
