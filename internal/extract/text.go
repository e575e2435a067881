// Package extract turns stored documents into text and field values.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

const pdfContentType = "application/pdf"

// IsPDF reports whether a document is a PDF by content type, extension or magic bytes.
func IsPDF(name, contentType string, data []byte) bool {
	if strings.EqualFold(strings.TrimSpace(contentType), pdfContentType) {
		return true
	}
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// PDFText returns the plain text of a PDF document.
func PDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: malformed pdf: %v", apperrors.ErrBadRequest, rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open pdf: %w", apperrors.ErrBadRequest, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: failed to read pdf text: %w", apperrors.ErrBadRequest, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to copy pdf text: %w", err)
	}
	return strings.ToValidUTF8(buf.String(), "\uFFFD"), nil
}

// Text extracts text from a PDF, or reads any other document as text with
// invalid UTF-8 replaced.
func Text(name, contentType string, data []byte) (string, error) {
	if IsPDF(name, contentType, data) {
		return PDFText(data)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
