package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impact-service/internal/model"
	"impact-service/internal/oauth"
)

func expiringConnection(tenantID uuid.UUID, slug string) *model.DataConnection {
	expiry := time.Now().Add(-time.Minute).UTC()
	return &model.DataConnection{
		UUID:                 uuid.New(),
		TenantUUID:           tenantID,
		DataSource:           slug,
		RefreshToken:         "old-refresh",
		AuthInfo:             `{"access_token":"old-access","realm_id":"12345"}`,
		AccessTokenExpiresAt: &expiry,
	}
}

func newIntegrationFixture(conns *memConnectionRepo, sources *memSourceRepo, exchanger *fakeExchanger) *IntegrationService {
	return NewIntegrationService(conns, sources, exchanger)
}

func TestRefreshSkipsConnectionWithoutExpiry(t *testing.T) {
	conns := &memConnectionRepo{}
	exchanger := &fakeExchanger{}
	svc := newIntegrationFixture(conns, &memSourceRepo{}, exchanger)

	conn := &model.DataConnection{UUID: uuid.New(), RefreshToken: "stale"}
	require.NoError(t, svc.Refresh(context.Background(), conn))

	assert.Zero(t, exchanger.calls)
	assert.Zero(t, conns.updates)
	assert.Equal(t, "stale", conn.RefreshToken)
}

func TestRefreshRotatesTokensInOneUpdate(t *testing.T) {
	tenantID := uuid.New()
	conn := expiringConnection(tenantID, "quickbooks")
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	sources := &memSourceRepo{sources: []*model.DataSource{{
		UUID: uuid.New(), Slug: "quickbooks", IsOwnApp: true,
		ClientID: "app-id", ClientSecret: "app-secret",
	}}}
	future := time.Now().Add(time.Hour).Unix()
	exchanger := &fakeExchanger{result: &oauth.TokenResult{
		AccessToken:           "new-access",
		RefreshToken:          "new-refresh",
		ExpiresAt:             future,
		RefreshTokenExpiresIn: 8726400,
	}}
	svc := newIntegrationFixture(conns, sources, exchanger)

	require.NoError(t, svc.Refresh(context.Background(), conn))

	assert.Equal(t, 1, exchanger.calls)
	assert.Equal(t, 1, conns.updates)
	assert.Equal(t, "new-refresh", conn.RefreshToken)
	require.NotNil(t, conn.AccessTokenExpiresAt)
	assert.Equal(t, future, conn.AccessTokenExpiresAt.Unix())
	require.NotNil(t, conn.RefreshTokenExpiresAt)
	assert.True(t, conn.RefreshTokenExpiresAt.After(time.Now()))

	// access_token is merged into the existing auth info, the rest survives
	var authInfo map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(conn.AuthInfo), &authInfo))
	assert.Equal(t, "new-access", authInfo["access_token"])
	assert.Equal(t, "12345", authInfo["realm_id"])
}

func TestRefreshOwnAppOmitsTenantCredentials(t *testing.T) {
	tenantID := uuid.New()
	conn := expiringConnection(tenantID, "quickbooks")
	conn.ClientID = "tenant-id"
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	sources := &memSourceRepo{sources: []*model.DataSource{{UUID: uuid.New(), Slug: "quickbooks", IsOwnApp: true}}}
	exchanger := &fakeExchanger{result: &oauth.TokenResult{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix()}}
	svc := newIntegrationFixture(conns, sources, exchanger)

	require.NoError(t, svc.Refresh(context.Background(), conn))
	assert.Nil(t, exchanger.creds)
}

func TestRefreshTenantAppPassesConnectionCredentials(t *testing.T) {
	tenantID := uuid.New()
	conn := expiringConnection(tenantID, "xero")
	conn.ClientID = "tenant-id"
	conn.ClientSecret = "tenant-secret"
	conn.TokenURL = "https://identity.xero.test/token"
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	sources := &memSourceRepo{sources: []*model.DataSource{{UUID: uuid.New(), Slug: "xero", IsOwnApp: false}}}
	exchanger := &fakeExchanger{result: &oauth.TokenResult{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix()}}
	svc := newIntegrationFixture(conns, sources, exchanger)

	require.NoError(t, svc.Refresh(context.Background(), conn))
	require.NotNil(t, exchanger.creds)
	assert.Equal(t, "tenant-id", exchanger.creds.ClientID)
	assert.Equal(t, "tenant-secret", exchanger.creds.ClientSecret)
	assert.Equal(t, "https://identity.xero.test/token", exchanger.creds.TokenURL)
}

func TestRefreshLeavesRefreshExpiryWhenProviderOmitsIt(t *testing.T) {
	conn := expiringConnection(uuid.New(), "quickbooks")
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	sources := &memSourceRepo{sources: []*model.DataSource{{UUID: uuid.New(), Slug: "quickbooks", IsOwnApp: true}}}
	exchanger := &fakeExchanger{result: &oauth.TokenResult{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix()}}
	svc := newIntegrationFixture(conns, sources, exchanger)

	require.NoError(t, svc.Refresh(context.Background(), conn))
	assert.Nil(t, conn.RefreshTokenExpiresAt)
}

func TestRefreshAllSkipsFailedConnections(t *testing.T) {
	tenantID := uuid.New()
	good := expiringConnection(tenantID, "quickbooks")
	bad := expiringConnection(tenantID, "no-such-source")
	conns := &memConnectionRepo{connections: []*model.DataConnection{bad, good}}
	sources := &memSourceRepo{sources: []*model.DataSource{{UUID: uuid.New(), Slug: "quickbooks", IsOwnApp: true}}}
	exchanger := &fakeExchanger{result: &oauth.TokenResult{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Unix()}}
	svc := newIntegrationFixture(conns, sources, exchanger)

	require.NoError(t, svc.RefreshAll(context.Background(), tenantID))
	assert.Equal(t, 1, exchanger.calls)
	assert.Equal(t, 1, conns.updates)
}

func TestGetReturnsConnectionWithOtherInfo(t *testing.T) {
	tenantID := uuid.New()
	conn := expiringConnection(tenantID, "quickbooks")
	conn.OtherInfo = `{"company_name":"River Cleanup"}`
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	svc := newIntegrationFixture(conns, &memSourceRepo{}, &fakeExchanger{})

	got, err := svc.Get(context.Background(), conn.UUID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, conn.UUID, got.UUID)
	assert.Equal(t, `{"company_name":"River Cleanup"}`, got.OtherInfo)

	_, err = svc.Get(context.Background(), conn.UUID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteChecksTenantOwnership(t *testing.T) {
	tenantID := uuid.New()
	conn := expiringConnection(tenantID, "quickbooks")
	conns := &memConnectionRepo{connections: []*model.DataConnection{conn}}
	svc := newIntegrationFixture(conns, &memSourceRepo{}, &fakeExchanger{})

	err := svc.Delete(context.Background(), conn.UUID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, conns.connections, 1)

	require.NoError(t, svc.Delete(context.Background(), conn.UUID, tenantID))
	assert.Empty(t, conns.connections)
}
