package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"impact-service/internal/model"
	"impact-service/internal/service"
	"impact-service/pkg/logger"
)

// PortfolioRequest defines the structure for portfolio creation requests
type PortfolioRequest struct {
	Category      string   `json:"category" validate:"required"`
	Description   string   `json:"description"`
	HTMLFileKey   string   `json:"html_file_key" validate:"required"`
	ImageFileKeys []string `json:"image_file_keys"`
	ReportID      string   `json:"report_id"`
}

// PortfolioHandler serves the portfolio lifecycle and download endpoints
type PortfolioHandler struct {
	portfolios *service.PortfolioService
	reports    *service.ReportService
}

func NewPortfolioHandler(portfolios *service.PortfolioService, reports *service.ReportService) *PortfolioHandler {
	return &PortfolioHandler{portfolios: portfolios, reports: reports}
}

// List handles retrieving the caller's portfolios with optional category filter
func (h *PortfolioHandler) List(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	category := model.PortfolioCategory(c.QueryParam("category"))
	portfolios, err := h.portfolios.List(requestContext(c), userID, category)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, portfolios)
}

// Latest handles retrieving the caller's most recent portfolios
func (h *PortfolioHandler) Latest(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	portfolios, err := h.portfolios.Latest(requestContext(c), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, portfolios)
}

// Get handles retrieving a single portfolio
func (h *PortfolioHandler) Get(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	portfolio, err := h.portfolios.Get(requestContext(c), id, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, portfolio)
}

// Create handles creating a portfolio from staged documents
func (h *PortfolioHandler) Create(c echo.Context) error {
	userID, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req PortfolioRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	portfolio, err := h.portfolios.Create(requestContext(c), userID, tenantID, service.CreatePortfolioInput{
		Category:      model.PortfolioCategory(req.Category),
		Description:   req.Description,
		HTMLFileKey:   req.HTMLFileKey,
		ImageFileKeys: req.ImageFileKeys,
		ReportID:      req.ReportID,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, portfolio)
}

// Delete handles removing a portfolio and its stored documents
func (h *PortfolioHandler) Delete(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.portfolios.Delete(requestContext(c), id, userID); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Download handles materializing a portfolio into the requested format
// and streaming it back as an attachment.
func (h *PortfolioHandler) Download(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	format, err := service.ParseFormat(c.QueryParam("fileType"))
	if err != nil {
		return serviceError(c, err)
	}

	ctx := requestContext(c)
	portfolio, err := h.portfolios.Get(ctx, id, userID)
	if err != nil {
		return serviceError(c, err)
	}

	data, err := h.reports.Materialize(ctx, portfolio, format, userID)
	if err != nil {
		return serviceError(c, err)
	}

	logger.FromEcho(c).Info("Portfolio downloaded",
		zap.String("portfolio_id", id.String()),
		zap.String("file_type", string(format)),
		zap.Int("bytes", len(data)))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, format.FileName()))
	return c.Blob(http.StatusOK, format.ContentType(), data)
}
