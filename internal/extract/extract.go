package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/Farid841/rara/internal/model"
	appErr "github.com/Farid841/rara/internal/pkg/errors"
)

type extractFunc func(data []byte) (string, error)

// extractors maps a lower-case file extension to its extractor. Unknown
// extensions are rejected before any extraction attempt.
var extractors = map[string]extractFunc{
	".pdf":  fromPDF,
	".docx": fromDOCX,
	".txt":  fromPlainText,
	".md":   fromPlainText,
	".html": fromPlainText,
}

// Text converts an uploaded document into plain text, dispatching on the
// file extension.
func Text(file model.UploadFile) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", appErr.ErrUnsupportedFormat, ext)
	}
	return fn(file.Bytes)
}

// Supported reports whether the file's extension has an extractor.
func Supported(name string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(name))]
	return ok
}

func fromPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", appErr.ErrExtraction, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", appErr.ErrExtraction, i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// docx structure, reduced to what paragraph text needs. Local names match
// regardless of the w: namespace prefix.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

func fromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("%w: word/document.xml missing", appErr.ErrExtraction)
	}
	var doc docxDocument
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrExtraction, err)
	}
	var sb strings.Builder
	for _, p := range doc.Body.Paragraphs {
		for _, r := range p.Runs {
			for _, t := range r.Texts {
				sb.WriteString(t)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func fromPlainText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	// Latin-1 maps every byte to the code point of the same value, so the
	// fallback itself cannot fail; NUL bytes are the one giveaway of
	// genuinely binary input and are rejected below.
	runes := make([]rune, 0, len(data))
	for _, b := range data {
		runes = append(runes, rune(b))
	}
	text := string(runes)
	if strings.ContainsRune(text, 0) {
		return "", fmt.Errorf("%w: binary content", appErr.ErrDecode)
	}
	return text, nil
}
