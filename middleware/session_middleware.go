package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/llm-model-access/auth"
	"github.com/upb/llm-model-access/internal/access"
	"go.uber.org/zap"
)

// TokenValidator validates a session token and returns its claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.ParsedClaims, error)
}

// PlanResolver looks up a user's current plan tier
type PlanResolver interface {
	ResolvePlanTier(ctx context.Context, userID uuid.UUID) (*string, error)
}

// SessionMiddleware attaches the caller's session to the request context
type SessionMiddleware struct {
	validator TokenValidator
	plans     PlanResolver
	logger    *zap.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware. validator and plans may be nil.
func NewSessionMiddleware(validator TokenValidator, plans PlanResolver, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		validator: validator,
		plans:     plans,
		logger:    logger,
	}
}

// authTokenCookieName is the cookie name for session tokens (Authorization header takes precedence)
const authTokenCookieName = "auth_token"
const sessionCookieName = "session"

// ResolveSession resolves an optional session. A missing or invalid token
// makes the caller a guest; it never rejects the request.
func (m *SessionMiddleware) ResolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if session := m.resolve(ctx, r); session != nil {
			ctx = WithSession(ctx, session)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) resolve(ctx context.Context, r *http.Request) *access.Session {
	requestID := GetRequestIDFromContext(ctx)

	token := extractToken(r)
	if token == "" || m.validator == nil {
		return nil
	}

	claims, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		m.logger.Debug("ignoring invalid session token",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil
	}

	session := &access.Session{
		UserID:   claims.UserID,
		Email:    claims.Email,
		PlanTier: m.planTier(ctx, requestID, claims),
	}

	m.logger.Debug("session resolved",
		zap.String("request_id", requestID),
		zap.String("user_id", claims.UserID.String()),
		zap.Bool("has_plan_tier", session.PlanTier != nil))
	return session
}

// planTier prefers the account database over the token claim. A failed
// lookup yields nil, which classifies as the free plan.
func (m *SessionMiddleware) planTier(ctx context.Context, requestID string, claims *auth.ParsedClaims) *string {
	if m.plans == nil {
		return claims.PlanTier
	}

	tier, err := m.plans.ResolvePlanTier(ctx, claims.UserID)
	if err != nil {
		m.logger.Warn("plan tier lookup failed, treating as free plan",
			zap.String("request_id", requestID),
			zap.String("user_id", claims.UserID.String()),
			zap.Error(err))
		return nil
	}
	if tier == nil {
		return claims.PlanTier
	}
	return tier
}

// extractToken extracts the token from the Authorization header ("Bearer TOKEN")
// or the auth_token / session cookies. The header takes precedence.
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	for _, name := range []string{authTokenCookieName, sessionCookieName} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
