// Package auth validates session tokens issued by the account service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/llm-model-access/services"
)

var (
	// ErrInvalidToken is returned when the token fails signature or structural checks
	ErrInvalidToken = services.ErrInvalidToken

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = services.ErrTokenExpired

	// ErrMissingClaims is returned when sub is absent or not a UUID
	ErrMissingClaims = services.ErrMissingClaims

	// ErrInvalidIssuer is returned when the token issuer does not match
	ErrInvalidIssuer = services.NewDomainError(services.ErrorTypeUnauthorized, "invalid token issuer", nil)

	// ErrNoSecret is returned by NewValidator without a signing secret
	ErrNoSecret = errors.New("auth: signing secret is required")
)

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	Email    string  `json:"email,omitempty"`
	PlanTier *string `json:"plan_tier,omitempty"`
}

// ParsedClaims are validated claims with typed fields.
type ParsedClaims struct {
	UserID    uuid.UUID
	Email     string
	PlanTier  *string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Validator validates HS256-signed session tokens.
type Validator struct {
	secret []byte
	parser *jwt.Parser
}

// NewValidator creates a validator. When issuer is non-empty the iss claim must match it.
func NewValidator(secret, issuer string) (*Validator, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Validator{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// ValidateToken validates a token and returns parsed claims
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*ParsedClaims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrInvalidIssuer
		default:
			return nil, services.WrapError(services.ErrorTypeUnauthorized, "invalid authentication token", err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return parseClaims(claims)
}

func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if claims.Subject == "" {
		return nil, ErrMissingClaims
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, services.WrapError(services.ErrorTypeUnauthorized, "invalid sub claim", err)
	}

	parsed := &ParsedClaims{
		UserID:   userID,
		Email:    claims.Email,
		PlanTier: claims.PlanTier,
	}
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}
	return parsed, nil
}

// Sign issues an HS256 token for the given user. It exists for tests and
// local tooling; production tokens come from the account service.
func Sign(secret, issuer string, userID uuid.UUID, email string, planTier *string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    email,
		PlanTier: planTier,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
