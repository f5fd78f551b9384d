// Package oauth implements the refresh token grant against data source
// providers.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"impact-service/internal/model"
	"impact-service/pkg/logger"
)

// Credentials override the data source's registered application when the
// tenant connected with their own app registration.
type Credentials struct {
	ClientID         string
	ClientSecret     string
	Scopes           string
	AuthorizationURL string
	TokenURL         string
}

// TokenResult is a successful token exchange
type TokenResult struct {
	AccessToken string
	// RefreshToken rotates on every exchange for most providers
	RefreshToken string
	// ExpiresAt is the unix timestamp the new access token expires at
	ExpiresAt int64
	// RefreshTokenExpiresIn is seconds until the refresh token itself
	// expires; zero for providers with long-lived refresh tokens.
	RefreshTokenExpiresIn int64
}

// tokenResponse covers the field name variations across providers
type tokenResponse struct {
	AccessToken          string `json:"access_token"`
	RefreshToken         string `json:"refresh_token"`
	ExpiresIn            int64  `json:"expires_in"`
	ExpiresAt            int64  `json:"expires_at"`
	XRefreshTokenExpires int64  `json:"x_refresh_token_expires_in"`
	Error                string `json:"error"`
	ErrorDescription     string `json:"error_description"`
}

// Exchanger performs refresh token grants over HTTP
type Exchanger struct {
	client *http.Client
}

// NewExchanger builds an Exchanger with the given request timeout
func NewExchanger(timeout time.Duration) *Exchanger {
	return &Exchanger{client: &http.Client{Timeout: timeout}}
}

// RefreshToken posts a refresh_token grant to the source's token
// endpoint. Credentials, when present, take precedence over the source's
// own registration.
func (e *Exchanger) RefreshToken(ctx context.Context, source *model.DataSource, refreshToken string, creds *Credentials) (*TokenResult, error) {
	tokenURL := source.TokenURL
	clientID := source.ClientID
	clientSecret := source.ClientSecret
	scopes := source.Scopes
	if creds != nil {
		tokenURL = creds.TokenURL
		clientID = creds.ClientID
		clientSecret = creds.ClientSecret
		scopes = creds.Scopes
	}
	if tokenURL == "" {
		return nil, fmt.Errorf("data source %s has no token endpoint", source.Slug)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	if scopes != "" {
		form.Set("scope", scopes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint %s: %w", source.Slug, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		logger.FromContext(ctx).Error("token endpoint rejected refresh",
			zap.String("data_source", source.Slug),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("token endpoint %s returned %d", source.Slug, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response from %s: %w", source.Slug, err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("token endpoint %s: %s: %s", source.Slug, tr.Error, tr.ErrorDescription)
	}

	expiresAt := tr.ExpiresAt
	if expiresAt == 0 && tr.ExpiresIn > 0 {
		expiresAt = time.Now().Unix() + tr.ExpiresIn
	}
	return &TokenResult{
		AccessToken:           tr.AccessToken,
		RefreshToken:          tr.RefreshToken,
		ExpiresAt:             expiresAt,
		RefreshTokenExpiresIn: tr.XRefreshTokenExpires,
	}, nil
}
