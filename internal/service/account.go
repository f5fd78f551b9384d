package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"impact-service/internal/model"
	"impact-service/internal/repository"
	"impact-service/pkg/jwtutil"
	"impact-service/pkg/logger"
)

const deletedEmailPrefix = "DELETE"

// AddUserInput is an admin's request to add a teammate
type AddUserInput struct {
	Email         string `json:"email"`
	Password1     string `json:"password1"`
	Password2     string `json:"password2"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	JobTitle      string `json:"job_title"`
	IsTenantAdmin bool   `json:"is_tenant_admin"`
}

// TenantProfileInput updates the tenant's public profile
type TenantProfileInput struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	OrgInfo         *string `json:"org_info"`
	Website         *string `json:"website"`
	SupportEmail    *string `json:"support_email"`
	NewsTopics      *string `json:"news_topics"`
	PrimaryLocation *string `json:"primary_location"`
}

// AccountService manages tenant-scoped user accounts and the tenant profile
type AccountService struct {
	users   repository.UserRepository
	tenants repository.TenantRepository
}

func NewAccountService(users repository.UserRepository, tenants repository.TenantRepository) *AccountService {
	return &AccountService{users: users, tenants: tenants}
}

// Login checks credentials and issues a JWT carrying the tenant context
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	role := "member"
	if user.IsTenantAdmin {
		role = "admin"
	}
	token, err := jwtutil.GenerateToken(user.Email, user.UUID, user.TenantUUID, user.Tenant.Name, role, user.IsTenantAdmin)
	if err != nil {
		return "", nil, err
	}

	logger.FromContext(ctx).Info("user logged in",
		zap.String("user_id", user.UUID.String()),
		zap.String("tenant_id", user.TenantUUID.String()))
	return token, user, nil
}

// List returns the tenant's visible accounts
func (s *AccountService) List(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	return s.users.ListVisibleByTenant(ctx, tenantID)
}

// Add creates a teammate account in the caller's tenant
func (s *AccountService) Add(ctx context.Context, tenantID uuid.UUID, input AddUserInput) (*model.User, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if input.Password1 == "" || input.Password1 != input.Password2 {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: the account already exists", ErrValidation)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:         input.Email,
		Password:      string(hashed),
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		JobTitle:      input.JobTitle,
		TenantUUID:    tenantID,
		IsTenantAdmin: input.IsTenantAdmin,
		IsActive:      true,
		IsVisible:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("account created",
		zap.String("user_id", user.UUID.String()),
		zap.String("tenant_id", tenantID.String()))
	return user, nil
}

// findTenantUser fetches a user and hides accounts of other tenants
func (s *AccountService) findTenantUser(ctx context.Context, userID, tenantID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if err := AuthorizeTenant(user.TenantUUID, tenantID); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive enables or disables a teammate account
func (s *AccountService) SetActive(ctx context.Context, userID, tenantID uuid.UUID, active bool) (*model.User, error) {
	user, err := s.findTenantUser(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword sets a new password for a teammate account
func (s *AccountService) ChangePassword(ctx context.Context, userID, tenantID uuid.UUID, password1, password2 string) error {
	if password1 == "" || password1 != password2 {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	user, err := s.findTenantUser(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.users.Update(ctx, user)
}

// Delete marks an account as deleted. The row stays for audit, the email
// is tombstoned so the address can be registered again.
func (s *AccountService) Delete(ctx context.Context, userID, tenantID uuid.UUID) error {
	user, err := s.findTenantUser(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	user.IsActive = false
	user.IsVisible = false
	if !strings.HasPrefix(user.Email, deletedEmailPrefix) {
		user.Email = fmt.Sprintf("%s-%s-%s", deletedEmailPrefix, user.UUID, user.Email)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("account deleted",
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", tenantID.String()))
	return nil
}

// TenantProfile returns the caller's tenant
func (s *AccountService) TenantProfile(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return tenant, nil
}

// UpdateTenantProfile edits the caller's tenant profile
func (s *AccountService) UpdateTenantProfile(ctx context.Context, tenantID uuid.UUID, input TenantProfileInput) (*model.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if input.Name != nil {
		tenant.Name = *input.Name
	}
	if input.Phone != nil {
		tenant.Phone = *input.Phone
	}
	if input.OrgInfo != nil {
		tenant.OrgInfo = *input.OrgInfo
	}
	if input.Website != nil {
		tenant.Website = *input.Website
	}
	if input.SupportEmail != nil {
		tenant.SupportEmail = *input.SupportEmail
	}
	if input.NewsTopics != nil {
		tenant.NewsTopics = *input.NewsTopics
	}
	if input.PrimaryLocation != nil {
		tenant.PrimaryLocation = *input.PrimaryLocation
	}
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}
