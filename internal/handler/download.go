package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"impact-service/internal/model"
	"impact-service/internal/service"
)

// DownloadHandler serves stored blobs. The route is public: the
// converter gateway fetches rendered documents and their inline images
// through it without credentials.
type DownloadHandler struct {
	downloads *service.DownloadService
}

func NewDownloadHandler(downloads *service.DownloadService) *DownloadHandler {
	return &DownloadHandler{downloads: downloads}
}

// Get handles retrieving a stored blob. The blob key is the remainder of
// the URL path; show_image serves it inline as an image, show_html wraps
// the document in the tenant's base template, anything else streams it
// as an attachment.
func (h *DownloadHandler) Get(c echo.Context) error {
	key := strings.Trim(c.Param("*"), "/")
	if key == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	isPortfolioPage := c.QueryParam("is_portfolio_page") != ""
	ctx := requestContext(c)

	switch {
	case c.QueryParam("show_image") != "":
		data, err := h.downloads.FetchImage(ctx, key, isPortfolioPage)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Blob(http.StatusOK, "image/png", data)

	case c.QueryParam("show_html") != "":
		userID, err := uuid.Parse(c.QueryParam("user_id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		category := model.PortfolioCategory(c.QueryParam("category"))
		html, err := h.downloads.RenderHTML(ctx, key, isPortfolioPage, category, userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.HTML(http.StatusOK, html)

	default:
		data, contentType, err := h.downloads.Fetch(ctx, key, isPortfolioPage)
		if err != nil {
			return serviceError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename=%q`, service.AttachmentName(key)))
		return c.Blob(http.StatusOK, contentType, data)
	}
}
