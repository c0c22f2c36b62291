package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/voice-admin/services"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name     string
		err      error
		wantBody string
	}{
		{
			name:     "upstream failure",
			err:      services.WrapUpstream("elevenlabs returned status 503", errors.New("overloaded")),
			wantBody: `{"success":false,"error":"Failed to discover agents","details":"elevenlabs returned status 503: overloaded"}`,
		},
		{
			name:     "malformed input",
			err:      services.WrapMalformed("invalid JSON body", errors.New("unexpected EOF")),
			wantBody: `{"success":false,"error":"Malformed request","details":"invalid JSON body: unexpected EOF"}`,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantBody: `{"success":false,"error":"Failed to discover agents","details":"boom"}`,
		},
		{
			name:     "not found is still a capability failure",
			err:      services.ErrUserNotFound,
			wantBody: `{"success":false,"error":"Failed to discover agents","details":"user not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			HandleServiceError(rec, tt.err, "Failed to discover agents", logger)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandleServiceErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()

	HandleServiceError(rec, nil, "Failed", zap.NewNop())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
