package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type contentKind string

const (
	kindPDF  contentKind = "PDF"
	kindDOCX contentKind = "DOCX"
	kindText contentKind = "TXT"
)

// classifyReference picks the extraction path from the reference suffix.
// Anything that is not a known binary format is treated as UTF-8 text.
func classifyReference(reference string) contentKind {
	//strip query and fragment so "…/doc.pdf?version=2" still reads as a pdf
	if parsed, err := url.Parse(reference); err == nil && parsed.Path != "" {
		reference = parsed.Path
	}
	switch strings.ToLower(filepath.Ext(reference)) {
	case ".pdf":
		return kindPDF
	case ".docx", ".rtf", ".odt":
		return kindDOCX
	default:
		return kindText
	}
}

func extractText(content []byte, kind contentKind) (string, error) {
	switch kind {
	case kindPDF:
		return extractPDF(content)
	case kindDOCX:
		return extractDocxRtfOdt(content)
	default:
		if !utf8.Valid(content) {
			return "", errors.New("document is not valid UTF-8 text")
		}
		return string(content), nil
	}
}

func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := protectExtract(page)
		if err != nil {
			//a single broken page should not lose the whole document
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	if text.Len() == 0 {
		return "", errors.New("pdf contained no extractable text")
	}
	return text.String(), nil
}

// extractDocxRtfOdt goes through a temp file because the extractor only
// reads from disk.
func extractDocxRtfOdt(content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "ingest-*.docx")
	if err != nil {
		return "", fmt.Errorf("temp file for extraction: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	tmp.Close()

	text, err := cat.File(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}
	return text, nil
}

// protectExtract guards against extraction hanging on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}
