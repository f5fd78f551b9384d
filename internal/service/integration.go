package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/model"
	"impact-service/internal/oauth"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

// OAuthExchanger performs the provider-side refresh grant
type OAuthExchanger interface {
	RefreshToken(ctx context.Context, source *model.DataSource, refreshToken string, creds *oauth.Credentials) (*oauth.TokenResult, error)
}

// IntegrationService keeps third-party data connection tokens fresh
type IntegrationService struct {
	connections repository.DataConnectionRepository
	sources     repository.DataSourceRepository
	exchanger   OAuthExchanger
}

func NewIntegrationService(connections repository.DataConnectionRepository, sources repository.DataSourceRepository, exchanger OAuthExchanger) *IntegrationService {
	return &IntegrationService{connections: connections, sources: sources, exchanger: exchanger}
}

// Refresh exchanges the connection's refresh token for a new access
// token and persists the rotated credentials in one update. Connections
// without an access token expiry never expire and are skipped silently.
func (s *IntegrationService) Refresh(ctx context.Context, conn *model.DataConnection) error {
	if conn == nil || conn.AccessTokenExpiresAt == nil {
		prometheus.TokenRefreshCounter.WithLabelValues("skipped").Inc()
		return nil
	}
	log := logger.FromContext(ctx).With(
		zap.String("connection_id", conn.UUID.String()),
		zap.String("data_source", conn.DataSource))

	source, err := s.sources.FindBySlug(ctx, conn.DataSource)
	if err != nil {
		prometheus.TokenRefreshCounter.WithLabelValues("error").Inc()
		return translateRepoErr(err)
	}

	// Sources outside the platform's own app registration carry the
	// tenant's credentials on the connection itself.
	var creds *oauth.Credentials
	if !source.IsOwnApp {
		creds = &oauth.Credentials{
			ClientID:         conn.ClientID,
			ClientSecret:     conn.ClientSecret,
			Scopes:           conn.Scopes,
			AuthorizationURL: conn.AuthorizationURL,
			TokenURL:         conn.TokenURL,
		}
	}

	result, err := s.exchanger.RefreshToken(ctx, source, conn.RefreshToken, creds)
	if err != nil {
		prometheus.TokenRefreshCounter.WithLabelValues("error").Inc()
		log.Error("token refresh failed", zap.Error(err))
		return err
	}

	authInfo := map[string]interface{}{}
	if conn.AuthInfo != "" {
		if err := json.Unmarshal([]byte(conn.AuthInfo), &authInfo); err != nil {
			log.Warn("discarding unreadable auth_info", zap.Error(err))
			authInfo = map[string]interface{}{}
		}
	}
	authInfo["access_token"] = result.AccessToken
	encoded, err := json.Marshal(authInfo)
	if err != nil {
		return err
	}

	conn.AuthInfo = string(encoded)
	conn.RefreshToken = result.RefreshToken
	expiresAt := time.Unix(result.ExpiresAt, 0).UTC()
	conn.AccessTokenExpiresAt = &expiresAt
	if result.RefreshTokenExpiresIn > 0 {
		refreshExpiry := time.Now().UTC().Add(time.Duration(result.RefreshTokenExpiresIn) * time.Second)
		conn.RefreshTokenExpiresAt = &refreshExpiry
	}

	if err := s.connections.Update(ctx, conn); err != nil {
		prometheus.TokenRefreshCounter.WithLabelValues("error").Inc()
		return err
	}

	prometheus.TokenRefreshCounter.WithLabelValues("refreshed").Inc()
	log.Info("refreshed oauth token")
	return nil
}

// RefreshByID refreshes a single connection looked up by ID
func (s *IntegrationService) RefreshByID(ctx context.Context, id uuid.UUID) error {
	conn, err := s.connections.FindByID(ctx, id)
	if err != nil {
		return translateRepoErr(err)
	}
	return s.Refresh(ctx, conn)
}

// RefreshAll refreshes every expiring connection of a tenant. A failed
// connection is logged and skipped so one dead integration cannot stall
// the rest.
func (s *IntegrationService) RefreshAll(ctx context.Context, tenantID uuid.UUID) error {
	connections, err := s.connections.ListExpiring(ctx, tenantID)
	if err != nil {
		return err
	}
	for i := range connections {
		if err := s.Refresh(ctx, &connections[i]); err != nil {
			logger.FromContext(ctx).Error("skipping failed refresh",
				zap.String("connection_id", connections[i].UUID.String()),
				zap.Error(err))
		}
	}
	return nil
}

// List returns the tenant's data connections
func (s *IntegrationService) List(ctx context.Context, tenantID uuid.UUID) ([]model.DataConnection, error) {
	return s.connections.ListByTenant(ctx, tenantID)
}

// Get returns a single data connection after checking tenant ownership
func (s *IntegrationService) Get(ctx context.Context, id, tenantID uuid.UUID) (*model.DataConnection, error) {
	conn, err := s.connections.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if err := AuthorizeTenant(conn.TenantUUID, tenantID); err != nil {
		return nil, err
	}
	return conn, nil
}

// Delete removes a data connection after checking tenant ownership
func (s *IntegrationService) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	conn, err := s.connections.FindByID(ctx, id)
	if err != nil {
		return translateRepoErr(err)
	}
	if err := AuthorizeTenant(conn.TenantUUID, tenantID); err != nil {
		return err
	}
	return s.connections.Delete(ctx, conn)
}
