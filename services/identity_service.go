package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sparklean/sparklean-api/config"
)

// UserInfo represents the user information returned from the identity
// provider's /userinfo endpoint.
type UserInfo struct {
	Sub   string `json:"sub"` // identity provider user ID
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Session is the provider-issued session returned from a code exchange.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// IdentityService handles interactions with the identity provider. The
// provider is opaque: it issues sessions and answers userinfo lookups, and
// nothing else about it is assumed.
type IdentityService struct {
	domain       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewIdentityService creates a new identity provider client.
func NewIdentityService(cfg *config.Config) *IdentityService {
	return &IdentityService{
		domain:       cfg.AuthDomain,
		clientID:     cfg.AuthClientID,
		clientSecret: cfg.AuthClientSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// baseURL returns the provider base URL. If the domain already includes a
// protocol (for testing), it is used as-is.
func (s *IdentityService) baseURL() string {
	if strings.HasPrefix(s.domain, "http://") || strings.HasPrefix(s.domain, "https://") {
		return s.domain
	}
	return "https://" + s.domain
}

// ExchangeCode exchanges an authorization code for a session at the
// provider's token endpoint.
func (s *IdentityService) ExchangeCode(ctx context.Context, code, redirectURI string) (*Session, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &session, nil
}

// GetUserInfo fetches user information from the provider's /userinfo
// endpoint. accessToken is the session token issued by the provider.
func (s *IdentityService) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL()+"/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	return &userInfo, nil
}
