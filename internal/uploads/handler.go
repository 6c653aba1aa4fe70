// Package uploads serves text extraction for uploaded resumes.
package uploads

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/extract"
	"tailorhire-api/internal/shared/metrics"
	"tailorhire-api/internal/shared/server/middleware"
	"tailorhire-api/internal/shared/server/respond"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/internal/shared/util"
	"tailorhire-api/internal/shared/workpool"
)

const (
	formField             = "file"
	defaultMaxUploadBytes = 10 << 20
	// multipart framing on top of the file itself
	formOverheadBytes = 64 << 10
)

// TextExtractor reads document bytes into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType, fileName string) (extract.ExtractedText, error)
}

// Handler accepts a multipart upload and returns its extracted text.
type Handler struct {
	Extractor TextExtractor
	Pool      *workpool.Pool
	MaxBytes  int64
}

// NewHandler builds a Handler. A non-positive maxBytes uses 10 MB.
func NewHandler(extractor TextExtractor, pool *workpool.Pool, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &Handler{Extractor: extractor, Pool: pool, MaxBytes: maxBytes}
}

type uploadResponse struct {
	Text         string `json:"text"`
	Filename     string `json:"filename"`
	Length       int    `json:"length"`
	SourceFormat string `json:"source_format"`
}

// RegisterRoutes attaches the upload route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+formOverheadBytes)

	fh, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fh.Size > h.MaxBytes {
		h.tooLarge(c)
		return
	}

	name := strings.TrimSpace(fh.Filename)
	if name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "filename is required", nil)
		return
	}
	safeName, err := util.SanitizeFileName(name)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid filename", nil)
		return
	}

	data, err := readPart(fh)
	if err != nil {
		telemetry.Error("uploads.read_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"err":        err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to read upload", nil)
		return
	}

	mediaType := partMediaType(fh, data)
	normalized := extract.NormalizeMediaType(mediaType, safeName, data)
	if !extract.SupportedMediaType(normalized) {
		respond.Error(c, http.StatusBadRequest, "unsupported_media_type",
			"Only PDF and DOCX files are supported", map[string]any{"media_type": mediaType})
		return
	}

	var out extract.ExtractedText
	job := func() error {
		var err error
		out, err = h.Extractor.Extract(c.Request.Context(), data, normalized, safeName)
		return err
	}
	if h.Pool != nil {
		err = h.Pool.Do(c.Request.Context(), job)
	} else {
		err = job()
	}
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedMediaType) {
			respond.Error(c, http.StatusBadRequest, "unsupported_media_type", "Only PDF and DOCX files are supported", nil)
			return
		}
		telemetry.Error("uploads.extract_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"filename":   safeName,
			"err":        err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to process file", nil)
		return
	}

	metrics.IncUploads()
	telemetry.Info("uploads.extracted", map[string]any{
		"request_id":    middleware.RequestIDFromContext(c),
		"filename":      safeName,
		"size_bytes":    len(data),
		"source_format": out.SourceFormat,
		"text_chars":    len(out.Text),
	})
	respond.JSON(c, http.StatusOK, uploadResponse{
		Text:         out.Text,
		Filename:     safeName,
		Length:       len(out.Text),
		SourceFormat: out.SourceFormat,
	})
}

func (h *Handler) tooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large",
		"file exceeds upload limit", map[string]any{"max_bytes": h.MaxBytes})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// partMediaType prefers the part's declared type and sniffs the bytes when
// the client sent none.
func partMediaType(fh *multipart.FileHeader, data []byte) string {
	if ct := strings.TrimSpace(fh.Header.Get("Content-Type")); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}
