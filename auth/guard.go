package auth

import "net/http"

// Role is the closed set of roles a session can carry
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a provider role string onto Role. Anything unknown is RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// RequiredRole is the role class an operation demands
type RequiredRole string

const (
	RequireAny   RequiredRole = "any"
	RequireAdmin RequiredRole = "admin"
)

// Session is the resolved identity of the current request. It is read-only input.
type Session struct {
	UserID        string `json:"userId"`
	Email         string `json:"email,omitempty"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	IsActive      bool   `json:"isActive"`
}

// Denial reasons
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// Decision is the outcome of one authorization evaluation
type Decision struct {
	Allowed    bool
	StatusCode int
	Reason     string
}

// Unauthenticated reports whether the decision denied a missing identity
func (d Decision) Unauthenticated() bool {
	return !d.Allowed && d.Reason == ReasonUnauthenticated
}

// Authorize decides whether session may perform an operation requiring role.
//
// Role mismatch is answered with 401 rather than 403; existing clients depend on it.
func Authorize(session *Session, required RequiredRole) Decision {
	if session == nil || session.UserID == "" {
		return Decision{StatusCode: http.StatusUnauthorized, Reason: ReasonUnauthenticated}
	}
	if required != RequireAny && session.Role != RoleAdmin {
		return Decision{StatusCode: http.StatusUnauthorized, Reason: ReasonForbidden}
	}
	return Decision{Allowed: true, StatusCode: http.StatusOK}
}
