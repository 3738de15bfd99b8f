package restapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Export formats
const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
)

var errBadFormat = errors.New("format must be one of: pdf, excel")

// ExportClient maps to the /export resource. Its payloads are raw bytes
// suitable for a client-side download; no parsing happens here.
type ExportClient struct {
	c *Client
}

// StudentData returns the exported record set for one student.
func (e *ExportClient) StudentData(ctx context.Context, studentID, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	q := url.Values{"format": {format}}
	return e.c.doRaw(ctx, http.MethodGet, "/export/students/"+studentID, q)
}

// Report generates a report of the given type.
func (e *ExportClient) Report(ctx context.Context, reportType, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	q := url.Values{"format": {format}}
	return e.c.doRaw(ctx, http.MethodPost, "/export/reports/"+reportType, q)
}

func checkFormat(format string) error {
	switch format {
	case FormatPDF, FormatExcel:
		return nil
	}
	return errBadFormat
}
