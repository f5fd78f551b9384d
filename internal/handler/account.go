package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"impact-service/internal/service"
	"impact-service/pkg/logger"
)

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordRequest carries a new password and its confirmation
type PasswordRequest struct {
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required"`
}

// AccountHandler serves authentication and tenant account management
type AccountHandler struct {
	accounts *service.AccountService
}

func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Login handles credential checks and JWT issuance
func (h *AccountHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	token, user, err := h.accounts.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		logger.FromEcho(c).Warn("Login failed", zap.String("email", req.Email))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

// List handles retrieving the tenant's visible accounts
func (h *AccountHandler) List(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	users, err := h.accounts.List(requestContext(c), tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Add handles creating a teammate account
func (h *AccountHandler) Add(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req service.AddUserInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, err := h.accounts.Add(requestContext(c), tenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// SetActive handles enabling or disabling a teammate account
func (h *AccountHandler) SetActive(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	user, err := h.accounts.SetActive(requestContext(c), id, tenantID, req.IsActive)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword handles setting a teammate's password
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req PasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.accounts.ChangePassword(requestContext(c), id, tenantID, req.Password1, req.Password2); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, "ok")
}

// Delete handles soft-deleting a teammate account
func (h *AccountHandler) Delete(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(requestContext(c), id, tenantID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, "ok")
}

// GetTenant handles retrieving the caller's tenant profile
func (h *AccountHandler) GetTenant(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	tenant, err := h.accounts.TenantProfile(requestContext(c), tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant handles editing the caller's tenant profile
func (h *AccountHandler) UpdateTenant(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req service.TenantProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	tenant, err := h.accounts.UpdateTenantProfile(requestContext(c), tenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}
