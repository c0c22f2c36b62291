package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/services/elevenlabs"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title        string
	Session      *auth.Session
	Agents       []elevenlabs.Agent
	Error        string
	LoginEnabled bool
}

// PageHandler serves the server-rendered pages. Guarded pages run behind middleware.Guard.Page.
type PageHandler struct {
	agents       AgentDirectory
	loginEnabled bool
	logger       *zap.Logger
}

// NewPageHandler creates a new PageHandler. loginEnabled controls the sign-in link.
func NewPageHandler(agents AgentDirectory, loginEnabled bool, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		agents:       agents,
		loginEnabled: loginEnabled,
		logger:       logger,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// HandleRoot redirects / to the dashboard
func (h *PageHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleDashboard renders /dashboard
func (h *PageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request, session auth.Session) {
	h.render(w, http.StatusOK, "dashboard", pageData{Title: "Dashboard", Session: &session})
}

// HandleAdmin renders /admin
func (h *PageHandler) HandleAdmin(w http.ResponseWriter, r *http.Request, session auth.Session) {
	h.render(w, http.StatusOK, "admin", pageData{Title: "Administration", Session: &session})
}

// HandleAdminAgents renders the agent list at /admin/agents
func (h *PageHandler) HandleAdminAgents(w http.ResponseWriter, r *http.Request, session auth.Session) {
	data := pageData{Title: "Voice agents", Session: &session}

	agents, err := h.agents.DiscoverAgents(r.Context())
	if err != nil {
		h.logger.Error("agent discovery failed", zap.Error(err))
		data.Error = MsgDiscoverAgentsFailed
		h.render(w, http.StatusInternalServerError, "agents", data)
		return
	}

	data.Agents = agents
	h.render(w, http.StatusOK, "agents", data)
}

// HandleSignIn renders the public sign-in page
func (h *PageHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "sign_in", pageData{Title: "Sign in", LoginEnabled: h.loginEnabled})
}

// HandleUnauthorized renders the public unauthorized page
func (h *PageHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "unauthorized", pageData{Title: "Not authorized"})
}
