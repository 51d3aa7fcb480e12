// Package textextract pulls plain text out of uploaded documents so they can
// take the raw-text route instead of transcription.
package textextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmpty = errors.New("document contains no extractable text")

type ExtractedText struct {
	Content string
	Pages   int
	Format  string
}

// Supported reports whether ext (".pdf", "pdf", ...) is a document type.
func Supported(ext string) bool {
	switch normalize(ext) {
	case "pdf", "docx", "txt":
		return true
	}
	return false
}

func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".txt"}
}

// Extract reads the whole document from r. Documents without any text
// return ErrEmpty.
func Extract(r io.Reader, ext string) (*ExtractedText, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	ra := bytes.NewReader(data)
	size := int64(len(data))

	var out *ExtractedText
	switch normalize(ext) {
	case "pdf":
		out, err = extractPDF(ra, size)
	case "docx":
		out, err = extractDOCX(ra, size)
	case "txt":
		out = &ExtractedText{Content: string(bytes.TrimSpace(data)), Pages: 1, Format: "txt"}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Content) == "" {
		return nil, ErrEmpty
	}
	return out, nil
}

func normalize(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func extractPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: strings.TrimSpace(buf.String()),
		Pages:   numPages,
		Format:  "pdf",
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	for _, f := range reader.File {
		if filepath.Base(f.Name) != "document.xml" {
			continue
		}
		content, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		return &ExtractedText{
			Content: stripXMLTags(string(content)),
			Pages:   1,
			Format:  "docx",
		}, nil
	}
	return nil, errors.New("open DOCX: word/document.xml not found")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return content, nil
}

// Paragraph ends become newlines; every other tag becomes a space.
func stripXMLTags(s string) string {
	s = strings.ReplaceAll(s, "</w:p>", "\n")

	var result strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}

	lines := strings.Split(result.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
