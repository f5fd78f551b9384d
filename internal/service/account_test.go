package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"impact-service/internal/model"
	"impact-service/pkg/jwtutil"
)

func hashedPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeUser(t *testing.T, tenantID uuid.UUID, email, password string) *model.User {
	return &model.User{
		UUID:       uuid.New(),
		Email:      email,
		Password:   hashedPassword(t, password),
		TenantUUID: tenantID,
		IsActive:   true,
		IsVisible:  true,
		Tenant:     model.Tenant{UUID: tenantID, Name: "river-cleanup"},
	}
}

func TestLoginIssuesTokenWithTenantContext(t *testing.T) {
	tenantID := uuid.New()
	user := activeUser(t, tenantID, "sam@example.org", "hunter2")
	user.IsTenantAdmin = true
	users := &memUserRepo{users: []*model.User{user}}
	svc := NewAccountService(users, &memTenantRepo{})

	token, got, err := svc.Login(context.Background(), "sam@example.org", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.UUID, got.UUID)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UUID, claims.UserID)
	assert.Equal(t, tenantID, claims.TenantID)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IsTenantAdmin)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	user := activeUser(t, uuid.New(), "sam@example.org", "hunter2")
	svc := NewAccountService(&memUserRepo{users: []*model.User{user}}, &memTenantRepo{})

	_, _, err := svc.Login(context.Background(), "sam@example.org", "wrong")
	require.ErrorIs(t, err, ErrValidation)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := activeUser(t, uuid.New(), "sam@example.org", "hunter2")
	user.IsActive = false
	svc := NewAccountService(&memUserRepo{users: []*model.User{user}}, &memTenantRepo{})

	_, _, err := svc.Login(context.Background(), "sam@example.org", "hunter2")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAddRejectsPasswordMismatch(t *testing.T) {
	svc := NewAccountService(&memUserRepo{}, &memTenantRepo{})
	_, err := svc.Add(context.Background(), uuid.New(), AddUserInput{
		Email: "new@example.org", Password1: "one", Password2: "two",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAddRejectsDuplicateEmail(t *testing.T) {
	user := activeUser(t, uuid.New(), "sam@example.org", "hunter2")
	svc := NewAccountService(&memUserRepo{users: []*model.User{user}}, &memTenantRepo{})

	_, err := svc.Add(context.Background(), uuid.New(), AddUserInput{
		Email: "sam@example.org", Password1: "pw", Password2: "pw",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddHashesPassword(t *testing.T) {
	users := &memUserRepo{}
	svc := NewAccountService(users, &memTenantRepo{})
	tenantID := uuid.New()

	created, err := svc.Add(context.Background(), tenantID, AddUserInput{
		Email: "new@example.org", Password1: "pw-secret", Password2: "pw-secret",
		FirstName: "New", IsTenantAdmin: false,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "pw-secret", created.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("pw-secret")))
	assert.Equal(t, tenantID, created.TenantUUID)
	assert.True(t, created.IsActive)
	assert.True(t, created.IsVisible)
}

func TestSetActiveHidesOtherTenantsUsers(t *testing.T) {
	user := activeUser(t, uuid.New(), "sam@example.org", "hunter2")
	svc := NewAccountService(&memUserRepo{users: []*model.User{user}}, &memTenantRepo{})

	_, err := svc.SetActive(context.Background(), user.UUID, uuid.New(), false)
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, user.IsActive)
}

func TestDeleteTombstonesEmail(t *testing.T) {
	tenantID := uuid.New()
	user := activeUser(t, tenantID, "sam@example.org", "hunter2")
	users := &memUserRepo{users: []*model.User{user}}
	svc := NewAccountService(users, &memTenantRepo{})

	require.NoError(t, svc.Delete(context.Background(), user.UUID, tenantID))

	assert.False(t, user.IsActive)
	assert.False(t, user.IsVisible)
	assert.Equal(t, "DELETE-"+user.UUID.String()+"-sam@example.org", user.Email)

	// Deleting again must not stack another tombstone prefix
	email := user.Email
	require.NoError(t, svc.Delete(context.Background(), user.UUID, tenantID))
	assert.Equal(t, email, user.Email)

	// A new account can reuse the released address
	_, err := svc.Add(context.Background(), tenantID, AddUserInput{
		Email: "sam@example.org", Password1: "pw", Password2: "pw",
	})
	require.NoError(t, err)
}

func TestDeletedAccountsLeaveListings(t *testing.T) {
	tenantID := uuid.New()
	user := activeUser(t, tenantID, "sam@example.org", "hunter2")
	users := &memUserRepo{users: []*model.User{user}}
	svc := NewAccountService(users, &memTenantRepo{})

	require.NoError(t, svc.Delete(context.Background(), user.UUID, tenantID))
	listed, err := svc.List(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestChangePasswordMismatch(t *testing.T) {
	tenantID := uuid.New()
	user := activeUser(t, tenantID, "sam@example.org", "hunter2")
	svc := NewAccountService(&memUserRepo{users: []*model.User{user}}, &memTenantRepo{})

	err := svc.ChangePassword(context.Background(), user.UUID, tenantID, "a", "b")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTenantProfilePatchesOnlyProvidedFields(t *testing.T) {
	tenant := &model.Tenant{UUID: uuid.New(), Name: "river-cleanup", Website: "https://old.example.org"}
	svc := NewAccountService(&memUserRepo{}, &memTenantRepo{tenants: []*model.Tenant{tenant}})

	website := "https://new.example.org"
	updated, err := svc.UpdateTenantProfile(context.Background(), tenant.UUID, TenantProfileInput{Website: &website})
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.org", updated.Website)
	assert.Equal(t, "river-cleanup", updated.Name)
}
