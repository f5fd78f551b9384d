// Package handler exposes the HTTP API. Handlers bind and validate
// input, delegate to the service layer and translate its error taxonomy
// into HTTP statuses.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"impact-service/internal/middleware"
	"impact-service/internal/service"
	"impact-service/pkg/logger"
)

// requestContext returns the request context carrying the request-scoped logger
func requestContext(c echo.Context) context.Context {
	return logger.WithContext(c.Request().Context(), logger.FromEcho(c))
}

// identity extracts the authenticated user and tenant from the context
func identity(c echo.Context) (userID, tenantID uuid.UUID, err error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing user context")
	}
	tenantID, ok = middleware.GetTenantIDFromContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing tenant context")
	}
	return userID, tenantID, nil
}

// pathUUID parses a UUID path parameter
func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// serviceError maps a service layer error to an HTTP response
func serviceError(c echo.Context, err error) error {
	log := logger.FromEcho(c)
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrTemplateNotFound):
		log.Error("No base template available", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no base template available"})
	case errors.Is(err, service.ErrConversionFailed):
		log.Error("Document conversion failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document conversion failed"})
	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
