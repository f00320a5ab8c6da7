package extract

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/otiai10/gosseract/v2"
)

// OCR recognizes text in scanned PDF documents.
type OCR interface {
	// Text runs OCR over every page of the PDF at path using the given
	// language code.
	Text(path, language string) (string, error)
}

// detectOCR returns the tesseract backend when both tesseract and the
// pdftoppm rasterizer are installed, nil otherwise.
func detectOCR() OCR {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		log.Debug("pdftoppm not found, OCR fallback disabled")
		return nil
	}
	return &TesseractOCR{}
}

// TesseractOCR recognizes scanned PDFs by rasterizing pages with pdftoppm and
// running tesseract over each page image.
type TesseractOCR struct{}

// Text implements OCR.
func (t *TesseractOCR) Text(path, language string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "sage-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// Rasterize at 300 DPI, the usual sweet spot for tesseract accuracy.
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", "300", "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(pages) == 0 {
		return "", fmt.Errorf("no pages rendered from %s", path)
	}
	sort.Strings(pages)

	client := gosseract.NewClient()
	defer client.Close()

	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set OCR language %q: %w", language, err)
	}

	var sb strings.Builder
	for _, page := range pages {
		if err := client.SetImage(page); err != nil {
			return "", fmt.Errorf("failed to load page image: %w", err)
		}
		text, err := client.Text()
		if err != nil {
			return "", fmt.Errorf("ocr failed on %s: %w", filepath.Base(page), err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	log.Debug("OCR complete", "path", path, "pages", len(pages))
	return sb.String(), nil
}
