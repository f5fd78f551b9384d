package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"impact-service/internal/service"
)

// UploadReportRequest defines the structure for editor save requests
type UploadReportRequest struct {
	ReportID        string          `json:"report_id" validate:"required"`
	ReportContent   string          `json:"report_content"`
	ReportCitations json.RawMessage `json:"report_citations"`
	ResearchChunks  json.RawMessage `json:"research_chunks"`
}

// EditorHandler serves the report editor storage endpoints
type EditorHandler struct {
	editor *service.EditorService
}

func NewEditorHandler(editor *service.EditorService) *EditorHandler {
	return &EditorHandler{editor: editor}
}

// UploadReport handles saving a report document
func (h *EditorHandler) UploadReport(c echo.Context) error {
	userID, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	var req UploadReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	email, _ := c.Get("email").(string)
	err = h.editor.UploadReport(requestContext(c), userID, tenantID, email, service.UploadReportInput{
		ReportID:        req.ReportID,
		ReportContent:   req.ReportContent,
		ReportCitations: req.ReportCitations,
		ResearchChunks:  req.ResearchChunks,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Report uploaded successfully"})
}

// FetchReport handles loading a report document
func (h *EditorHandler) FetchReport(c echo.Context) error {
	reportID := c.QueryParam("report_id")
	report, err := h.editor.FetchReport(requestContext(c), reportID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// FetchReportAsHTML handles the unauthenticated HTML view the converter
// gateway renders from.
func (h *EditorHandler) FetchReportAsHTML(c echo.Context) error {
	reportID := c.QueryParam("report_id")
	html, err := h.editor.FetchReportHTML(requestContext(c), reportID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.HTML(http.StatusOK, html)
}

// ListReports handles paging through the tenant's stored reports
func (h *EditorHandler) ListReports(c echo.Context) error {
	_, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	entries, nextToken, err := h.editor.ListReports(requestContext(c), tenantID, c.QueryParam("continuation_token"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reports":            entries,
		"continuation_token": nextToken,
	})
}

// UploadImage handles a multipart editor image upload
func (h *EditorHandler) UploadImage(c echo.Context) error {
	userID, tenantID, err := identity(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	key, err := h.editor.UploadImage(requestContext(c), userID, tenantID, c.QueryParam("report_id"), file)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Upload Successfully.", "data": key})
}

// SaveImageFromURL handles importing an editor image from a remote URL
func (h *EditorHandler) SaveImageFromURL(c echo.Context) error {
	imageURL := c.FormValue("image_url")
	key, err := h.editor.SaveImageFromURL(requestContext(c), c.QueryParam("report_id"), imageURL)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Upload Successfully.", "data": key})
}

// FetchImage handles serving a stored editor image
func (h *EditorHandler) FetchImage(c echo.Context) error {
	data, name, err := h.editor.FetchImage(requestContext(c), c.QueryParam("image_key"))
	if err != nil {
		return serviceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
