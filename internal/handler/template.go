package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/model"
	"impact-service/internal/service"
)

// TemplateRequest defines the structure for template creation requests
type TemplateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	FileKey     string `json:"file_key" validate:"required"`
	Category    string `json:"category"`
}

// TemplateHandler serves report base template management
type TemplateHandler struct {
	templates *service.TemplateService
}

func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// templateCategory reads the category query parameter, defaulting to PDF
func templateCategory(c echo.Context) model.TemplateCategory {
	category := model.TemplateCategory(c.QueryParam("category"))
	if category == "" {
		category = model.TemplatePDF
	}
	return category
}

// List handles retrieving the templates visible to the caller's tenant
func (h *TemplateHandler) List(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	templates, err := h.templates.List(requestContext(c), tenantID, templateCategory(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, templates)
}

// Get handles retrieving a single tenant-owned template
func (h *TemplateHandler) Get(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	tpl, err := h.templates.Get(requestContext(c), tenantID, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

// Create handles storing a tenant-owned template
func (h *TemplateHandler) Create(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	category := model.TemplateCategory(req.Category)
	if category == "" {
		category = model.TemplatePDF
	}

	tid := tenantID
	tpl := &model.ReportBaseTemplate{
		Title:       req.Title,
		Description: req.Description,
		FileKey:     req.FileKey,
		TenantUUID:  &tid,
		Category:    category,
	}
	if err := h.templates.Create(requestContext(c), tpl); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, tpl)
}

// SetAsDefault handles reassigning the tenant's default template
func (h *TemplateHandler) SetAsDefault(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.templates.SetAsDefault(requestContext(c), tenantID, id, templateCategory(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "default template updated"})
}

// Delete handles removing a tenant-owned template
func (h *TemplateHandler) Delete(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.templates.Delete(requestContext(c), tenantID, id); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
