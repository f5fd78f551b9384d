package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/service"
)

// DataConnectionHandler serves tenant data connection management
type DataConnectionHandler struct {
	integrations *service.IntegrationService
}

func NewDataConnectionHandler(integrations *service.IntegrationService) *DataConnectionHandler {
	return &DataConnectionHandler{integrations: integrations}
}

// List handles retrieving the tenant's data connections
func (h *DataConnectionHandler) List(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	connections, err := h.integrations.List(requestContext(c), tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, connections)
}

// Get handles retrieving one data connection, including its other_info
func (h *DataConnectionHandler) Get(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	connection, err := h.integrations.Get(requestContext(c), id, tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, connection)
}

// RefreshToken handles refreshing one connection's credentials and
// returning the updated connection.
func (h *DataConnectionHandler) RefreshToken(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	ctx := requestContext(c)
	if err := h.integrations.RefreshByID(ctx, id); err != nil {
		return serviceError(c, err)
	}

	connections, err := h.integrations.List(ctx, tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	for i := range connections {
		if connections[i].UUID == id {
			return c.JSON(http.StatusOK, connections[i])
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
}

// RefreshAll handles refreshing every expiring connection of the tenant
func (h *DataConnectionHandler) RefreshAll(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.integrations.RefreshAll(requestContext(c), tenantID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "refresh completed"})
}

// Delete handles removing a data connection
func (h *DataConnectionHandler) Delete(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.integrations.Delete(requestContext(c), id, tenantID); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
