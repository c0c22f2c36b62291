package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/config"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

// SessionHandler is a handler that runs only after authorization succeeded.
// The session is passed explicitly and is never read from the request context.
type SessionHandler func(w http.ResponseWriter, r *http.Request, session auth.Session)

// Guard adapts auth.Authorize to API and page routes
type Guard struct {
	sessions auth.SessionProvider
	pages    config.PagesConfig
	logger   *zap.Logger
}

// NewGuard creates a new Guard
func NewGuard(sessions auth.SessionProvider, pages config.PagesConfig, logger *zap.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		pages:    pages,
		logger:   logger,
	}
}

// Resolve returns the session of r. A provider error counts as no session.
func (g *Guard) Resolve(r *http.Request) *auth.Session {
	session, err := g.sessions.GetSession(r.Context(), r)
	if err != nil {
		g.logger.Debug("session resolution failed",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		return nil
	}
	return session
}

func (g *Guard) authorize(r *http.Request, required auth.RequiredRole) (*auth.Session, auth.Decision) {
	LogState(g.logger, r, StateReceived, zap.String("required_role", string(required)))

	session := g.Resolve(r)
	decision := auth.Authorize(session, required)

	if decision.Allowed {
		LogState(g.logger, r, StateAuthorized,
			zap.String("user_id", session.UserID),
			zap.String("role", string(session.Role)))
	} else {
		LogState(g.logger, r, StateDenied,
			zap.String("reason", decision.Reason),
			zap.Int("status", decision.StatusCode))
	}
	return session, decision
}

// API guards a JSON route. A denied request gets the 401 Unauthorized envelope.
func (g *Guard) API(required auth.RequiredRole, next SessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, decision := g.authorize(r, required)
		if !decision.Allowed {
			_ = utils.WriteUnauthorized(w)
			LogState(g.logger, r, StateResponded, zap.Int("status", http.StatusUnauthorized))
			return
		}

		g.serve(w, r, *session, next)
	}
}

// Page guards a server-rendered route. Unauthenticated requests go to the
// sign-in page and role mismatches to the unauthorized page. Redirects carry no body.
func (g *Guard) Page(required auth.RequiredRole, next SessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, decision := g.authorize(r, required)
		if !decision.Allowed {
			target := g.pages.UnauthorizedPath
			if decision.Unauthenticated() {
				target = g.pages.SignInPath
			}
			w.Header().Set("Location", target)
			w.WriteHeader(http.StatusFound)
			LogState(g.logger, r, StateResponded, zap.Int("status", http.StatusFound), zap.String("location", target))
			return
		}

		g.serve(w, r, *session, next)
	}
}

func (g *Guard) serve(w http.ResponseWriter, r *http.Request, session auth.Session, next SessionHandler) {
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	next(ww, r, session)
	LogState(g.logger, r, StateResponded, zap.Int("status", ww.Status()))
}
