package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Envelope is the uniform wire shape of every API response.
// On success the payload fields sit next to "success"; on failure only
// "error" and an optional "details" are present.
type Envelope struct {
	Success bool
	Data    map[string]json.RawMessage
	Error   string
	Details string
}

// HasData reports whether the envelope carries payload fields
func (e Envelope) HasData() bool {
	return e.Success && e.Data != nil
}

// HasError reports whether the envelope carries an error message
func (e Envelope) HasError() bool {
	return !e.Success && e.Error != ""
}

// MarshalJSON flattens Data into the top-level object
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		out := make(map[string]interface{}, len(e.Data)+1)
		for k, v := range e.Data {
			out[k] = v
		}
		out["success"] = true
		return json.Marshal(out)
	}

	out := map[string]interface{}{
		"success": false,
		"error":   e.Error,
	}
	if e.Details != "" {
		out["details"] = e.Details
	}
	return json.Marshal(out)
}

// BuildSuccess builds a success envelope whose fields are the JSON fields of payload.
// Payloads that do not encode to a JSON object are placed under "data".
func BuildSuccess(payload interface{}) (Envelope, error) {
	env := Envelope{Success: true, Data: map[string]json.RawMessage{}}
	if payload == nil {
		return env, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	switch {
	case bytes.Equal(raw, []byte("null")):
	case len(raw) > 0 && raw[0] == '{':
		if err := json.Unmarshal(raw, &env.Data); err != nil {
			return Envelope{}, fmt.Errorf("flatten payload: %w", err)
		}
		delete(env.Data, "success")
	default:
		env.Data["data"] = raw
	}
	return env, nil
}

// BuildError builds a failure envelope. Multiple details are joined with "; ".
func BuildError(message string, details ...string) Envelope {
	if message == "" {
		message = "Internal server error"
	}
	return Envelope{
		Error:   message,
		Details: strings.Join(details, "; "),
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteEnvelope writes env with the given status code
func WriteEnvelope(w http.ResponseWriter, status int, env Envelope) error {
	return WriteJSON(w, status, env)
}

// WriteSuccess writes a 200 success envelope built from payload
func WriteSuccess(w http.ResponseWriter, payload interface{}) error {
	env, err := BuildSuccess(payload)
	if err != nil {
		return WriteEnvelope(w, http.StatusInternalServerError, BuildError("Internal server error", err.Error()))
	}
	return WriteEnvelope(w, http.StatusOK, env)
}

// WriteFailure writes a failure envelope with the given status code
func WriteFailure(w http.ResponseWriter, status int, message string, details ...string) error {
	return WriteEnvelope(w, status, BuildError(message, details...))
}

// WriteUnauthorized writes the 401 envelope used for every denied API request
func WriteUnauthorized(w http.ResponseWriter) error {
	return WriteFailure(w, http.StatusUnauthorized, "Unauthorized")
}

// WriteNotFound writes a 404 envelope
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteFailure(w, http.StatusNotFound, message)
}

// WriteInternalServerError writes a 500 envelope
func WriteInternalServerError(w http.ResponseWriter, message string, details ...string) error {
	return WriteFailure(w, http.StatusInternalServerError, message, details...)
}
