package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/upb/voice-admin/config"
)

// TokenResponse represents the OAuth2 token endpoint response from Cognito
type TokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// CognitoTokenExchanger exchanges authorization codes for tokens via Cognito
type CognitoTokenExchanger struct {
	cfg        config.CognitoConfig
	httpClient *http.Client
}

// NewCognitoTokenExchanger creates a new token exchanger
func NewCognitoTokenExchanger(cfg config.CognitoConfig) *CognitoTokenExchanger {
	return &CognitoTokenExchanger{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ExchangeCode exchanges an authorization code for an ID token
func (e *CognitoTokenExchanger) ExchangeCode(ctx context.Context, code, redirectURI, state string) (idToken string, err error) {
	if !e.cfg.Enabled() {
		return "", WrapUpstream("token exchange failed", errors.New("cognito not configured"))
	}

	tokenURL := strings.TrimSuffix(e.cfg.Domain, "/") + "/oauth2/token"
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {e.cfg.ClientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", WrapUpstream("token exchange failed", fmt.Errorf("create token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if e.cfg.ClientSecret != "" {
		req.SetBasicAuth(e.cfg.ClientID, e.cfg.ClientSecret)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", WrapUpstream("token exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", WrapUpstream("token exchange failed", fmt.Errorf("read token response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", NewDomainError(ErrorTypeUpstream, "token exchange failed",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", WrapUpstream("token exchange failed", fmt.Errorf("parse token response: %w", err))
	}

	if tokenResp.IDToken == "" {
		return "", WrapUpstream("token exchange failed", errors.New("no id_token in response"))
	}

	return tokenResp.IDToken, nil
}
