package elevenlabs

import "encoding/json"

// Agent is a conversational agent configured in ElevenLabs
type Agent struct {
	AgentID           string   `json:"agentId"`
	Name              string   `json:"name"`
	Tags              []string `json:"tags"`
	CreatedAtUnixSecs int64    `json:"createdAtUnixSecs"`
	AccessLevel       string   `json:"accessLevel,omitempty"`
}

// ActiveAgent is an agent with at least one conversation in progress
type ActiveAgent struct {
	AgentID               string `json:"agentId"`
	Name                  string `json:"name"`
	ActiveConversations   int    `json:"activeConversations"`
	LastStartedAtUnixSecs int64  `json:"lastStartedAtUnixSecs"`
}

// Conversation statuses that count as active
const (
	StatusInitiated  = "initiated"
	StatusInProgress = "in-progress"
	StatusProcessing = "processing"
)

func isActiveStatus(status string) bool {
	switch status {
	case StatusInitiated, StatusInProgress, StatusProcessing:
		return true
	}
	return false
}

// Wire types

type agentsPage struct {
	Agents     []agentSummary `json:"agents"`
	HasMore    bool           `json:"has_more"`
	NextCursor *string        `json:"next_cursor"`
}

type agentSummary struct {
	AgentID           string   `json:"agent_id"`
	Name              string   `json:"name"`
	Tags              []string `json:"tags"`
	CreatedAtUnixSecs int64    `json:"created_at_unix_secs"`
	AccessInfo        *struct {
		Role string `json:"role"`
	} `json:"access_info"`
}

type conversationsPage struct {
	Conversations []conversationSummary `json:"conversations"`
	HasMore       bool                  `json:"has_more"`
	NextCursor    *string               `json:"next_cursor"`
}

type conversationSummary struct {
	AgentID           string `json:"agent_id"`
	AgentName         string `json:"agent_name"`
	ConversationID    string `json:"conversation_id"`
	StartTimeUnixSecs int64  `json:"start_time_unix_secs"`
	Status            string `json:"status"`
}

// errorBody is the error payload. detail is either an object or a plain string.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (a agentSummary) toAgent() Agent {
	agent := Agent{
		AgentID:           a.AgentID,
		Name:              a.Name,
		Tags:              a.Tags,
		CreatedAtUnixSecs: a.CreatedAtUnixSecs,
	}
	if agent.Tags == nil {
		agent.Tags = []string{}
	}
	if a.AccessInfo != nil {
		agent.AccessLevel = a.AccessInfo.Role
	}
	return agent
}
