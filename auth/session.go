package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/upb/voice-admin/cognito"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/services"
	"go.uber.org/zap"
)

// authTokenCookieName carries tokens set by API clients; SessionCookieName is set by the OAuth callback.
const authTokenCookieName = "auth_token"

// SessionProvider resolves the session of a request. A nil session with a nil
// error means the request carries no credentials.
type SessionProvider interface {
	GetSession(ctx context.Context, r *http.Request) (*Session, error)
}

// SessionProviderFunc adapts a function to SessionProvider
type SessionProviderFunc func(ctx context.Context, r *http.Request) (*Session, error)

// GetSession calls f
func (f SessionProviderFunc) GetSession(ctx context.Context, r *http.Request) (*Session, error) {
	return f(ctx, r)
}

// UserLookup finds the local record of a Cognito user
type UserLookup interface {
	GetByCognitoSub(ctx context.Context, sub string) (*models.User, error)
}

// TokenSessionProvider builds sessions from Cognito tokens, overlaying role and
// activation state from the users table when a lookup is configured.
type TokenSessionProvider struct {
	validator TokenValidator
	users     UserLookup
	logger    *zap.Logger
}

// NewTokenSessionProvider creates a session provider. users may be nil.
func NewTokenSessionProvider(validator TokenValidator, users UserLookup, logger *zap.Logger) *TokenSessionProvider {
	return &TokenSessionProvider{
		validator: validator,
		users:     users,
		logger:    logger,
	}
}

// GetSession implements SessionProvider
func (p *TokenSessionProvider) GetSession(ctx context.Context, r *http.Request) (*Session, error) {
	tokens := ExtractTokens(r)
	if len(tokens) == 0 {
		return nil, nil
	}

	claims, err := p.validateFirst(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("validate session token: %w", err)
	}

	session := sessionFromClaims(claims)

	if p.users == nil {
		return session, nil
	}

	user, err := p.users.GetByCognitoSub(ctx, session.UserID)
	switch {
	case err == nil:
		session.Role = ParseRole(string(user.Role))
		session.IsActive = user.IsActive
	case services.IsNotFoundError(err):
		p.logger.Debug("no local user record, using token claims", zap.String("sub", session.UserID))
	default:
		return nil, fmt.Errorf("lookup user %s: %w", session.UserID, err)
	}

	return session, nil
}

func sessionFromClaims(claims *cognito.ParsedClaims) *Session {
	return &Session{
		UserID:        claims.Sub.String(),
		Email:         claims.Email,
		Role:          ParseRole(claims.Role),
		EmailVerified: claims.EmailVerified,
		IsActive:      true,
	}
}

// validateFirst returns the claims of the first token that validates. A stale
// auth_token cookie must not hide a fresh session cookie. When no token
// validates the error of the highest precedence token is returned.
func (p *TokenSessionProvider) validateFirst(ctx context.Context, tokens []string) (*cognito.ParsedClaims, error) {
	var firstErr error
	for i, token := range tokens {
		claims, err := p.validator.ValidateToken(ctx, token)
		if err == nil {
			return claims, nil
		}
		p.logger.Debug("session token rejected", zap.Int("source", i), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// ExtractTokens returns the candidate tokens of r in precedence order: the
// bearer token, then the auth_token and session cookies. Duplicates are dropped.
func ExtractTokens(r *http.Request) []string {
	var tokens []string
	add := func(token string) {
		if token == "" {
			return
		}
		for _, t := range tokens {
			if t == token {
				return
			}
		}
		tokens = append(tokens, token)
	}

	add(extractBearerToken(r))
	for _, name := range []string{authTokenCookieName, SessionCookieName} {
		if cookie, err := r.Cookie(name); err == nil {
			add(cookie.Value)
		}
	}
	return tokens
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
