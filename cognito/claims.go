package cognito

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")
)

func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	sub, err := uuid.Parse(claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("invalid sub UUID: %w", err)
	}

	parsed := &ParsedClaims{
		Sub:           sub,
		Email:         claims.Email,
		Role:          ResolveRole(claims),
		Groups:        claims.Groups,
		EmailVerified: claims.EmailVerified,
		Username:      claims.CognitoUsername,
	}

	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}

// ResolveRole returns custom:userRole when set, otherwise "admin" for members
// of AdminGroup and "user" for everyone else.
func ResolveRole(claims *Claims) string {
	if claims.Role != "" {
		return claims.Role
	}
	for _, g := range claims.Groups {
		if g == AdminGroup {
			return "admin"
		}
	}
	return "user"
}
