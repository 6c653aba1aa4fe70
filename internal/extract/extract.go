// Package extract recovers plain text from uploaded PDF and DOCX resumes.
//
// Extraction degrades instead of failing: when a supported document yields no
// usable text the caller receives a fixed notice asking for pasted text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"tailorhire-api/internal/shared/telemetry"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mimeZip         = "application/zip"
	mimeOctetStream = "application/octet-stream"
)

// Source formats recorded on ExtractedText.
const (
	SourcePDF      = "pdf"
	SourceDOCX     = "docx"
	SourceFallback = "fallback"
)

// ErrUnsupportedMediaType is returned for missing or unknown media types.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ExtractedText is the text recovered from one upload.
type ExtractedText struct {
	Text         string `json:"text"`
	SourceFormat string `json:"source_format"`
}

// Extractor turns document bytes into text.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract reads data as the given media type. fileName is only used to
// resolve generic container types and to label fallback notices.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType, fileName string) (ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return ExtractedText{}, err
	}
	normalized := NormalizeMediaType(mediaType, fileName, data)
	switch normalized {
	case MimePDF:
		text, err := extractPDF(data)
		if err != nil || text == "" {
			logFallback(SourcePDF, fileName, len(data), err)
			return ExtractedText{Text: pdfNotice(fileName), SourceFormat: SourceFallback}, nil
		}
		logExtracted(SourcePDF, text)
		return ExtractedText{Text: text, SourceFormat: SourcePDF}, nil
	case MimeDOCX:
		text, err := extractDOCX(data)
		if err == nil && len(text) < minDOCXChars {
			err = fmt.Errorf("docx text too short: %d characters", len(text))
		}
		if err != nil {
			logFallback(SourceDOCX, fileName, len(data), err)
			return ExtractedText{Text: docxNotice, SourceFormat: SourceFallback}, nil
		}
		logExtracted(SourceDOCX, text)
		return ExtractedText{Text: text, SourceFormat: SourceDOCX}, nil
	case "":
		return ExtractedText{}, fmt.Errorf("%w: media type missing", ErrUnsupportedMediaType)
	default:
		return ExtractedText{}, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, normalized)
	}
}

// SupportedMediaType reports whether mediaType is one Extract can read.
func SupportedMediaType(mediaType string) bool {
	switch cleanMediaType(mediaType) {
	case MimePDF, MimeDOCX:
		return true
	default:
		return false
	}
}

// NormalizeMediaType drops parameters and lower-cases mediaType. Generic
// container types are resolved from the bytes and then the file extension.
func NormalizeMediaType(mediaType, fileName string, data []byte) string {
	clean := cleanMediaType(mediaType)
	if clean != mimeZip && clean != mimeOctetStream && clean != "" {
		return clean
	}
	if len(data) == 0 {
		return clean
	}

	if sniffed := cleanMediaType(mimetype.Detect(data).String()); sniffed == MimePDF || sniffed == MimeDOCX {
		return sniffed
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx":
		return MimeDOCX
	case ".pdf":
		return MimePDF
	default:
		return clean
	}
}

func cleanMediaType(mediaType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
}

func mapOOXMLFromZip(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}

func logExtracted(format, text string) {
	telemetry.Info("extract.complete", map[string]any{
		"format": format,
		"chars":  len(text),
		"words":  len(strings.Fields(text)),
	})
}

func logFallback(format, fileName string, size int, err error) {
	fields := map[string]any{
		"format":    format,
		"file_name": fileName,
		"bytes":     size,
	}
	if err != nil {
		fields["err"] = err.Error()
	}
	telemetry.Warn("extract.fallback", fields)
}
