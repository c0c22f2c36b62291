package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/upb/voice-admin/config"
	"github.com/upb/voice-admin/services"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://api.elevenlabs.io"
	defaultPageSize = 30
	defaultMaxPages = 10
	apiKeyHeader    = "xi-api-key"
	maxErrorBody    = 64 << 10
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("elevenlabs API key is not configured")

// Client calls the ElevenLabs conversational AI API
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new ElevenLabs client
func NewClient(cfg config.ElevenLabsConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// DiscoverAgents lists every agent in the workspace, following cursors up to the page limit
func (c *Client) DiscoverAgents(ctx context.Context) ([]Agent, error) {
	agents := make([]Agent, 0)
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		var resp agentsPage
		if err := c.get(ctx, "/v1/convai/agents", c.pageQuery(cursor), &resp); err != nil {
			return nil, err
		}
		for _, a := range resp.Agents {
			agents = append(agents, a.toAgent())
		}
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return agents, nil
		}
		cursor = *resp.NextCursor
	}

	c.logger.Warn("agent listing truncated at page limit", zap.Int("max_pages", c.maxPages), zap.Int("agents", len(agents)))
	return agents, nil
}

// GetActiveAgents groups in-flight conversations by agent. The result is
// ordered by active conversation count, then agent ID.
func (c *Client) GetActiveAgents(ctx context.Context) ([]ActiveAgent, error) {
	byAgent := make(map[string]*ActiveAgent)
	cursor := ""

	for page := 0; page < c.maxPages; page++ {
		var resp conversationsPage
		if err := c.get(ctx, "/v1/convai/conversations", c.pageQuery(cursor), &resp); err != nil {
			return nil, err
		}
		for _, conv := range resp.Conversations {
			if !isActiveStatus(conv.Status) {
				continue
			}
			active, ok := byAgent[conv.AgentID]
			if !ok {
				active = &ActiveAgent{AgentID: conv.AgentID, Name: conv.AgentName}
				byAgent[conv.AgentID] = active
			}
			active.ActiveConversations++
			if conv.StartTimeUnixSecs > active.LastStartedAtUnixSecs {
				active.LastStartedAtUnixSecs = conv.StartTimeUnixSecs
			}
		}
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	result := make([]ActiveAgent, 0, len(byAgent))
	for _, a := range byAgent {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ActiveConversations != result[j].ActiveConversations {
			return result[i].ActiveConversations > result[j].ActiveConversations
		}
		return result[i].AgentID < result[j].AgentID
	})
	return result, nil
}

func (c *Client) pageQuery(cursor string) url.Values {
	q := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	return q
}

// get performs one GET and decodes the JSON body into out. Failures are upstream errors.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.apiKey == "" {
		return services.WrapUpstream("elevenlabs request failed", ErrNotConfigured)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.WrapUpstream("elevenlabs request failed", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.WrapUpstream("elevenlabs request failed", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("elevenlabs call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.WrapUpstream("elevenlabs response could not be decoded", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var cause error
	if detail := detailMessage(body); detail != "" {
		cause = errors.New(detail)
	}
	msg := fmt.Sprintf("elevenlabs returned status %d", status)
	return services.NewDomainError(services.ErrorTypeUpstream, msg, cause).WithDetail("status", status)
}

func detailMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var detail errorDetail
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		return detail.Message
	}
	var text string
	if err := json.Unmarshal(eb.Detail, &text); err == nil {
		return text
	}
	return ""
}
