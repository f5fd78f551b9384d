package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/service"
)

// NewsHandler serves the tenant news feed
type NewsHandler struct {
	news *service.NewsService
}

func NewNewsHandler(news *service.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// Feed handles retrieving the tenant's cached news feed
func (h *NewsHandler) Feed(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	articles, err := h.news.Feed(requestContext(c), tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, articles)
}
