package rag

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// supportedFormats maps upload extensions to their content types. Anything
// else is rejected before an extraction attempt.
var supportedFormats = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
	".md":  "text/markdown",
}

// DetectFormat validates a filename against the supported text-bearing
// formats and returns its content type.
func DetectFormat(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ct, ok := supportedFormats[ext]
	if !ok {
		return "", &UnsupportedFormatError{Filename: filename, ContentType: ext}
	}
	return ct, nil
}

// ExtractText returns the plain text of a supported document. PDFs are read
// page by page and concatenated in page order.
func ExtractText(filename string, data []byte) (string, error) {
	ct, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch ct {
	case "application/pdf":
		text, err = extractPDF(data)
		if err != nil {
			return "", &ExtractionError{Filename: filename, Err: err}
		}
	default:
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Filename: filename, Err: ErrNoText}
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if content != "" {
			sb.WriteString(content)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}
