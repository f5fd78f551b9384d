package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/service"
)

// ReleaseNoteHandler serves the public product changelog
type ReleaseNoteHandler struct {
	notes *service.ReleaseNoteService
}

func NewReleaseNoteHandler(notes *service.ReleaseNoteService) *ReleaseNoteHandler {
	return &ReleaseNoteHandler{notes: notes}
}

// List handles retrieving the latest release notes
func (h *ReleaseNoteHandler) List(c echo.Context) error {
	notes, err := h.notes.Latest(requestContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// Get handles retrieving one release note
func (h *ReleaseNoteHandler) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	note, err := h.notes.Get(requestContext(c), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}
