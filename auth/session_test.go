package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/voice-admin/cognito"
	"github.com/upb/voice-admin/models"
	"github.com/upb/voice-admin/services"
	"go.uber.org/zap"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateToken(ctx context.Context, token string) (*cognito.ParsedClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cognito.ParsedClaims), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByCognitoSub(ctx context.Context, sub string) (*models.User, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestTokenSessionProvider_GetSession(t *testing.T) {
	sub := uuid.New()
	claims := &cognito.ParsedClaims{Sub: sub, Email: "ops@example.com", Role: "user", EmailVerified: true}

	t.Run("no token means no session", func(t *testing.T) {
		p := NewTokenSessionProvider(new(mockValidator), nil, zap.NewNop())

		session, err := p.GetSession(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("claims only", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "tok").Return(claims, nil)

		session, err := NewTokenSessionProvider(v, nil, zap.NewNop()).GetSession(context.Background(), bearerRequest("tok"))
		require.NoError(t, err)
		assert.Equal(t, &Session{UserID: sub.String(), Email: "ops@example.com", Role: RoleUser, EmailVerified: true, IsActive: true}, session)
	})

	t.Run("user record overrides role and activation", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "tok").Return(claims, nil)
		users := new(mockUsers)
		user := models.NewUser("ops@example.com", sub.String(), models.RoleAdmin)
		user.IsActive = false
		users.On("GetByCognitoSub", mock.Anything, sub.String()).Return(user, nil)

		session, err := NewTokenSessionProvider(v, users, zap.NewNop()).GetSession(context.Background(), bearerRequest("tok"))
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, session.Role)
		assert.False(t, session.IsActive)
		users.AssertExpectations(t)
	})

	t.Run("missing user record keeps claims", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "tok").Return(claims, nil)
		users := new(mockUsers)
		users.On("GetByCognitoSub", mock.Anything, sub.String()).Return(nil, services.ErrUserNotFound)

		session, err := NewTokenSessionProvider(v, users, zap.NewNop()).GetSession(context.Background(), bearerRequest("tok"))
		require.NoError(t, err)
		assert.Equal(t, RoleUser, session.Role)
		assert.True(t, session.IsActive)
	})

	t.Run("lookup failure is an error", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "tok").Return(claims, nil)
		users := new(mockUsers)
		users.On("GetByCognitoSub", mock.Anything, sub.String()).Return(nil, errors.New("db down"))

		session, err := NewTokenSessionProvider(v, users, zap.NewNop()).GetSession(context.Background(), bearerRequest("tok"))
		assert.Error(t, err)
		assert.Nil(t, session)
	})

	t.Run("invalid token is an error", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "bad").Return(nil, cognito.ErrTokenExpired)

		session, err := NewTokenSessionProvider(v, nil, zap.NewNop()).GetSession(context.Background(), bearerRequest("bad"))
		assert.ErrorIs(t, err, cognito.ErrTokenExpired)
		assert.Nil(t, session)
	})

	t.Run("stale auth_token falls through to session cookie", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "stale").Return(nil, cognito.ErrTokenExpired)
		v.On("ValidateToken", mock.Anything, "good").Return(claims, nil)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: "stale"})
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})

		session, err := NewTokenSessionProvider(v, nil, zap.NewNop()).GetSession(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, sub.String(), session.UserID)
		v.AssertExpectations(t)
	})

	t.Run("every token rejected reports the first failure", func(t *testing.T) {
		v := new(mockValidator)
		v.On("ValidateToken", mock.Anything, "bad").Return(nil, cognito.ErrTokenExpired)
		v.On("ValidateToken", mock.Anything, "worse").Return(nil, errors.New("signature mismatch"))

		req := bearerRequest("bad")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "worse"})

		session, err := NewTokenSessionProvider(v, nil, zap.NewNop()).GetSession(context.Background(), req)
		assert.ErrorIs(t, err, cognito.ErrTokenExpired)
		assert.Nil(t, session)
		v.AssertExpectations(t)
	})
}

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		cookies []*http.Cookie
		want    []string
	}{
		{name: "bearer header", header: "Bearer abc", want: []string{"abc"}},
		{name: "case insensitive scheme", header: "bearer abc", want: []string{"abc"}},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz"},
		{name: "auth_token cookie", cookies: []*http.Cookie{{Name: "auth_token", Value: "from-api"}}, want: []string{"from-api"}},
		{name: "session cookie", cookies: []*http.Cookie{{Name: SessionCookieName, Value: "from-login"}}, want: []string{"from-login"}},
		{
			name:    "header before cookies",
			header:  "Bearer header-token",
			cookies: []*http.Cookie{{Name: SessionCookieName, Value: "cookie-token"}},
			want:    []string{"header-token", "cookie-token"},
		},
		{
			name:    "auth_token before session",
			cookies: []*http.Cookie{{Name: SessionCookieName, Value: "from-login"}, {Name: "auth_token", Value: "from-api"}},
			want:    []string{"from-api", "from-login"},
		},
		{
			name:    "duplicates dropped",
			header:  "Bearer same",
			cookies: []*http.Cookie{{Name: SessionCookieName, Value: "same"}},
			want:    []string{"same"},
		},
		{name: "empty cookie ignored", cookies: []*http.Cookie{{Name: SessionCookieName, Value: ""}}},
		{name: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			assert.Equal(t, tt.want, ExtractTokens(req))
		})
	}
}
