package service

import "fmt"

// Format is the closed set of output formats a report can be
// materialized into.
type Format string

const (
	FormatPDF Format = "PDF"
	FormatPPT Format = "PPT"
	FormatDOC Format = "DOC"
)

// ParseFormat validates a client-supplied format string
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatPPT, FormatDOC:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: unknown file type %q", ErrValidation, s)
}

// Ext returns the blob key extension of the format
func (f Format) Ext() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatPPT:
		return "pptx"
	case FormatDOC:
		return "docx"
	}
	return ""
}

// ContentType returns the MIME type of the rendered document
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPPT:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatDOC:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// FileName returns the attachment name offered to the client
func (f Format) FileName() string {
	switch f {
	case FormatPDF:
		return "report.pdf"
	case FormatPPT:
		return "report.pptx"
	case FormatDOC:
		return "report.docx"
	}
	return "report"
}
