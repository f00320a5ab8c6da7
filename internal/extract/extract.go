// Package extract pulls raw text out of project documents.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions is the fixed set of file types sage can ingest.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".xlsx": true,
	".txt":  true,
	".md":   true,
}

// Supported reports whether files with the given extension can be extracted.
func Supported(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// Extensions returns the supported extensions in no particular order.
func Extensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Extractor converts documents into plain text, dispatching on extension.
type Extractor struct {
	// OCR handles scanned PDFs. Nil disables the OCR fallback.
	OCR OCR

	// Language is the OCR language code (tesseract naming, e.g. "eng", "vie").
	Language string
}

// New creates an Extractor with the tesseract OCR backend when it is
// available on this system.
func New(language string) *Extractor {
	return &Extractor{
		OCR:      detectOCR(),
		Language: language,
	}
}

// Extract returns the plain text of the document at path.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return e.extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".pptx":
		return extractPPTX(path)
	case ".xlsx":
		return extractXLSX(path)
	case ".txt", ".md":
		return extractText(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// extractText reads a plain text or markdown file as-is.
func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}
