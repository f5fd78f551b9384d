package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/service"
)

// StoryRoomVerifyRequest is an anonymous story room lookup by tenant name
type StoryRoomVerifyRequest struct {
	TenantName string `json:"tenant_name" validate:"required"`
}

// StoryHandler serves the story room settings and the anonymous story flow
type StoryHandler struct {
	stories *service.StoryService
}

func NewStoryHandler(stories *service.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// GetRoom handles retrieving the tenant's story room settings
func (h *StoryHandler) GetRoom(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	room, err := h.stories.Room(requestContext(c), tenantID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// UpdateRoom handles changing the tenant's story room settings
func (h *StoryHandler) UpdateRoom(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req service.RoomUpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	room, err := h.stories.UpdateRoom(requestContext(c), tenantID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Verify handles the anonymous story room lookup before an upload
func (h *StoryHandler) Verify(c echo.Context) error {
	var req StoryRoomVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	info, err := h.stories.VerifyRoom(requestContext(c), req.TenantName)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// Upload handles an anonymous story submission
func (h *StoryHandler) Upload(c echo.Context) error {
	var req service.StoryUploadInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.stories.Upload(requestContext(c), req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, "ok")
}

// ListStories handles paging through the tenant's uploaded stories
func (h *StoryHandler) ListStories(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	entries, nextToken, err := h.stories.ListStories(requestContext(c), tenantID, c.QueryParam("continuation_token"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"blobs":              entries,
		"continuation_token": nextToken,
	})
}

// GetStory handles fetching one uploaded story's text
func (h *StoryHandler) GetStory(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	text, err := h.stories.FetchStory(requestContext(c), tenantID, c.QueryParam("fileName"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, text)
}

// DeleteStory handles removing one uploaded story
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req struct {
		FileName string `json:"file_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if err := h.stories.DeleteStory(requestContext(c), tenantID, req.FileName); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
