// Package extract converts uploaded PDF and DOCX files into plain text
// for the structuring pipeline.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported upload kinds.
const (
	KindPDF  = "pdf"
	KindDOC  = "doc"
	KindDOCX = "docx"
)

// UnsupportedFormatError indicates an upload kind the service cannot
// extract text from.
type UnsupportedFormatError struct {
	Kind string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s (expected pdf, doc, or docx)", e.Kind)
}

// Text extracts plain text from an uploaded file. The kind is the
// client-declared file extension, lowercased, without a leading dot.
func Text(data []byte, kind string) (string, error) {
	switch strings.ToLower(kind) {
	case KindPDF:
		return pdfText(data)
	case KindDOC, KindDOCX:
		return docxText(data)
	default:
		return "", &UnsupportedFormatError{Kind: kind}
	}
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not void the rest.
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n\n")
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in pdf")
	}
	return text, nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text := doc.Editable().GetContent()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in document")
	}
	return text, nil
}
