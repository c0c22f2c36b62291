package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/upb/voice-admin/cognito"
	"github.com/upb/voice-admin/config"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

const (
	// StateCookieName is the cookie name for OAuth state (CSRF)
	StateCookieName = "oauth_state"
	// SessionCookieName is the cookie name for the session token
	SessionCookieName   = "session"
	stateCookieMaxAge   = 600
	sessionCookieMaxAge = 86400 * 7 // 7 days
	defaultLandingPath  = "/dashboard"
)

// TokenExchanger exchanges OAuth2 authorization codes for tokens via the OAuth2 token endpoint.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code, redirectURI, state string) (idToken string, err error)
}

// TokenValidator validates JWT tokens and returns parsed claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*cognito.ParsedClaims, error)
}

// Handler handles the Cognito hosted UI flow (login, callback, logout).
type Handler struct {
	cfg       *config.Config
	exchanger TokenExchanger
	validator TokenValidator
	logger    *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(cfg *config.Config, exchanger TokenExchanger, validator TokenValidator, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		exchanger: exchanger,
		validator: validator,
		logger:    logger,
	}
}

func (h *Handler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.Cognito.RedirectURI, "https")
}

// The callback is a cross-site top-level navigation from Cognito, so these cookies use Lax.
func (h *Handler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleLogin redirects to the Cognito hosted UI
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Cognito.Enabled() {
		h.logger.Error("cognito not configured")
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
		return
	}

	state, err := generateSecureState()
	if err != nil {
		h.logger.Error("failed to generate state", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to initiate login")
		return
	}

	h.setCookie(w, StateCookieName, state, stateCookieMaxAge)

	authURL := buildAuthURL(h.cfg.Cognito.Domain, h.cfg.Cognito.ClientID, h.cfg.Cognito.RedirectURI, state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback exchanges the authorization code, validates the ID token and sets the session cookie
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		_ = utils.WriteFailure(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	if state == "" {
		_ = utils.WriteFailure(w, http.StatusBadRequest, "Missing state parameter")
		return
	}

	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || stateCookie.Value != state {
		_ = utils.WriteFailure(w, http.StatusBadRequest, "Invalid or expired state")
		return
	}

	h.setCookie(w, StateCookieName, "", -1)

	if h.exchanger == nil || h.validator == nil {
		h.logger.Error("token exchange not configured")
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
		return
	}

	idToken, err := h.exchanger.ExchangeCode(r.Context(), code, h.cfg.Cognito.RedirectURI, state)
	if err != nil {
		h.logger.Warn("token exchange failed", zap.Error(err))
		_ = utils.WriteFailure(w, http.StatusUnauthorized, "Unauthorized", "authentication failed")
		return
	}

	claims, err := h.validator.ValidateToken(r.Context(), idToken)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		_ = utils.WriteFailure(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
		return
	}

	h.setCookie(w, SessionCookieName, idToken, sessionCookieMaxAge)
	h.logger.Info("user signed in", zap.String("sub", claims.Sub.String()), zap.String("role", claims.Role))

	redirectURL := h.cfg.Cognito.FrontEndURL
	if redirectURL == "" {
		redirectURL = defaultLandingPath
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// HandleLogout clears the session and auth_token cookies and redirects to
// Cognito logout, or to the sign-in page when Cognito is not configured.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, SessionCookieName, "", -1)
	h.setCookie(w, authTokenCookieName, "", -1)

	if !h.cfg.Cognito.Enabled() {
		http.Redirect(w, r, h.cfg.Pages.SignInPath, http.StatusFound)
		return
	}

	logoutURL := buildLogoutURL(h.cfg.Cognito.Domain, h.cfg.Cognito.ClientID, h.cfg.Cognito.RedirectURI)
	http.Redirect(w, r, logoutURL, http.StatusFound)
}

func buildAuthURL(domain, clientID, redirectURI, state string) string {
	base := strings.TrimSuffix(domain, "/") + "/oauth2/authorize"
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"state":         {state},
		"scope":         {"openid email profile"},
	}
	return base + "?" + params.Encode()
}

func buildLogoutURL(domain, clientID, redirectURI string) string {
	logoutURI := redirectURI
	if parsed, err := url.Parse(redirectURI); err == nil && parsed.Host != "" {
		logoutURI = parsed.Scheme + "://" + parsed.Host
	}
	base := strings.TrimSuffix(domain, "/") + "/logout"
	params := url.Values{
		"client_id":  {clientID},
		"logout_uri": {logoutURI},
	}
	return base + "?" + params.Encode()
}

func generateSecureState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
