package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
)

// minTextLength is the threshold below which extracted PDF text is treated as
// implausibly short, indicating a scanned document that needs OCR.
const minTextLength = 100

// extractPDF extracts text from a PDF, falling back to OCR for scanned
// documents and for files whose structured extraction fails outright.
func (e *Extractor) extractPDF(path string) (string, error) {
	text, err := pdfPlainText(path)
	if err != nil {
		log.Debug("Structured PDF extraction failed, attempting OCR", "path", path, "error", err)
		return e.ocrPDF(path, err)
	}

	if len(strings.TrimSpace(text)) < minTextLength && e.OCR != nil {
		log.Debug("PDF text implausibly short, attempting OCR", "path", path, "chars", len(text))
		ocrText, ocrErr := e.OCR.Text(path, e.Language)
		if ocrErr != nil {
			// Keep whatever direct extraction produced.
			log.Warn("OCR fallback failed", "path", path, "error", ocrErr)
			return text, nil
		}
		return ocrText, nil
	}

	return text, nil
}

// ocrPDF runs the pure-OCR path after structured extraction failed.
func (e *Extractor) ocrPDF(path string, cause error) (string, error) {
	if e.OCR == nil {
		return "", fmt.Errorf("pdf extraction failed and no OCR backend available: %w", cause)
	}
	text, err := e.OCR.Text(path, e.Language)
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed (%v) and OCR failed: %w", cause, err)
	}
	return text, nil
}

// pdfPlainText reads the embedded text layer of a PDF. Malformed files can
// make the parser panic, which is reported as an error.
func pdfPlainText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return buf.String(), nil
}
