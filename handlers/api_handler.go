package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/voice-admin/auth"
	"github.com/upb/voice-admin/middleware"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/services"
	"github.com/upb/voice-admin/services/elevenlabs"
	"github.com/upb/voice-admin/services/logs"
	"github.com/upb/voice-admin/utils"
	"go.uber.org/zap"
)

// Static failure messages per endpoint
const (
	MsgDiscoverAgentsFailed = "Failed to discover agents"
	MsgActiveAgentsFailed   = "Failed to fetch active agents"
	MsgRecordLogFailed      = "Failed to record log"
	MsgListLogsFailed       = "Failed to list logs"
)

const maxLogBodyBytes = 64 << 10

// AgentDirectory lists ElevenLabs agents
type AgentDirectory interface {
	DiscoverAgents(ctx context.Context) ([]elevenlabs.Agent, error)
	GetActiveAgents(ctx context.Context) ([]elevenlabs.ActiveAgent, error)
}

// LogStore records and lists client log entries
type LogStore interface {
	RecordLog(ctx context.Context, session auth.Session, input logs.LogInput) (*models.LogEntry, error)
	ListLogs(ctx context.Context, filter models.LogFilter) (*logs.ListResult, error)
}

// AgentsResponse is the payload of both agent endpoints
type AgentsResponse struct {
	Agents interface{} `json:"agents"`
	Total  int         `json:"total"`
}

// RecordLogResponse is the payload of POST /api/logs
type RecordLogResponse struct {
	ID         uuid.UUID `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
}

// MeResponse is the payload of GET /api/me
type MeResponse struct {
	User auth.Session `json:"user"`
}

// APIHandler serves the JSON API. Its methods run behind middleware.Guard.API.
type APIHandler struct {
	agents AgentDirectory
	logs   LogStore
	logger *zap.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(agents AgentDirectory, logStore LogStore, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		agents: agents,
		logs:   logStore,
		logger: logger,
	}
}

// respond writes the success envelope for result, or the failure envelope for err
func (h *APIHandler) respond(w http.ResponseWriter, r *http.Request, failureMessage string, result interface{}, err error) {
	if err != nil {
		logger := h.logger.With(
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path))
		HandleServiceError(w, err, failureMessage, logger)
		return
	}
	if werr := utils.WriteSuccess(w, result); werr != nil {
		h.logger.Error("failed to write response", zap.Error(werr))
	}
}

func (h *APIHandler) delegated(r *http.Request, capability string) {
	middleware.LogState(h.logger, r, middleware.StateDelegated, zap.String("capability", capability))
}

// HandleDiscoverAgents handles GET /api/agents/discover
func (h *APIHandler) HandleDiscoverAgents(w http.ResponseWriter, r *http.Request, session auth.Session) {
	h.delegated(r, "DiscoverAgents")

	agents, err := h.agents.DiscoverAgents(r.Context())
	if err != nil {
		h.respond(w, r, MsgDiscoverAgentsFailed, nil, err)
		return
	}
	h.respond(w, r, MsgDiscoverAgentsFailed, AgentsResponse{Agents: agents, Total: len(agents)}, nil)
}

// HandleActiveAgents handles GET /api/agents/active
func (h *APIHandler) HandleActiveAgents(w http.ResponseWriter, r *http.Request, session auth.Session) {
	h.delegated(r, "GetActiveAgents")

	agents, err := h.agents.GetActiveAgents(r.Context())
	if err != nil {
		h.respond(w, r, MsgActiveAgentsFailed, nil, err)
		return
	}
	h.respond(w, r, MsgActiveAgentsFailed, AgentsResponse{Agents: agents, Total: len(agents)}, nil)
}

// HandleRecordLog handles POST /api/logs
func (h *APIHandler) HandleRecordLog(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var input logs.LogInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLogBodyBytes)).Decode(&input); err != nil {
		h.respond(w, r, MsgRecordLogFailed, nil, services.WrapMalformed("invalid JSON body", err))
		return
	}
	input.RequestID = middleware.GetRequestIDFromContext(r.Context())

	h.delegated(r, "RecordLog")

	entry, err := h.logs.RecordLog(r.Context(), session, input)
	if err != nil {
		h.respond(w, r, MsgRecordLogFailed, nil, err)
		return
	}
	h.respond(w, r, MsgRecordLogFailed, RecordLogResponse{ID: entry.ID, RecordedAt: entry.CreatedAt}, nil)
}

// HandleListLogs handles GET /api/logs?limit=&offset=&level=&userId=
func (h *APIHandler) HandleListLogs(w http.ResponseWriter, r *http.Request, session auth.Session) {
	filter, err := parseLogFilter(r)
	if err != nil {
		h.respond(w, r, MsgListLogsFailed, nil, err)
		return
	}

	h.delegated(r, "ListLogs")

	result, err := h.logs.ListLogs(r.Context(), filter)
	h.respond(w, r, MsgListLogsFailed, result, err)
}

// HandleMe handles GET /api/me
func (h *APIHandler) HandleMe(w http.ResponseWriter, r *http.Request, session auth.Session) {
	h.respond(w, r, "", MeResponse{User: session}, nil)
}

// parseLogFilter reads paging and filters from the query. level may repeat or be comma separated.
func parseLogFilter(r *http.Request) (models.LogFilter, error) {
	q := r.URL.Query()
	filter := models.LogFilter{UserID: q.Get("userId")}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, services.WrapMalformed("invalid query", fmt.Errorf("%s must be an integer", p.name))
		}
		*p.dst = n
	}

	for _, value := range q["level"] {
		for _, level := range strings.Split(value, ",") {
			if level = strings.TrimSpace(level); level != "" {
				filter.Levels = append(filter.Levels, models.LogLevel(strings.ToLower(level)))
			}
		}
	}
	return filter, nil
}
