package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// DOCX and PPTX are OPC containers: a zip archive of XML parts. Text lives in
// w:t (WordprocessingML) and a:t (DrawingML) elements; w:p and a:p elements
// delimit paragraphs.

// extractDOCX extracts the document body text from a .docx file.
func extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			text, err := opcPartText(f, "t", "p")
			if err != nil {
				return "", fmt.Errorf("failed to parse docx body: %w", err)
			}
			return text, nil
		}
	}

	return "", fmt.Errorf("docx has no word/document.xml part")
}

// extractPPTX extracts slide text from a .pptx file, slides in order.
func extractPPTX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pptx: %w", err)
	}
	defer r.Close()

	var slides []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("pptx has no slides")
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var sb strings.Builder
	for _, slide := range slides {
		text, err := opcPartText(slide, "t", "p")
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", slide.Name, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

// slideNumber extracts the numeric suffix of ppt/slides/slideN.xml so slides
// sort in presentation order rather than lexically.
func slideNumber(name string) int {
	base := strings.TrimSuffix(filepath.Base(name), ".xml")
	base = strings.TrimPrefix(base, "slide")
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// opcPartText streams an XML part and collects character data inside textTag
// elements, inserting line breaks at paraTag boundaries.
func opcPartText(f *zip.File, textTag, paraTag string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textTag {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == textTag {
				inText = false
			}
			if t.Name.Local == paraTag {
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
