// Package render turns an optimized resume into a PDF: an embedded HTML
// template is executed and the markup is printed by a PDFConverter.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/resume/model"
)

const templateName = "resume.html.tmpl"

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

// ErrRenderingFailure marks any failure to produce document bytes.
var ErrRenderingFailure = errors.New("rendering failed")

// Error reports the stage that failed. It matches ErrRenderingFailure.
type Error struct {
	Stage string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrRenderingFailure, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrRenderingFailure, e.Stage)
}

// Is matches ErrRenderingFailure.
func (e *Error) Is(target error) bool {
	return target == ErrRenderingFailure
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// PDFConverter prints HTML to PDF bytes.
type PDFConverter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// Renderer holds the parsed template for the process lifetime.
type Renderer struct {
	tmpl      *template.Template
	converter PDFConverter
}

type templateData struct {
	Resume model.OptimizedResumeData
	CSS    template.CSS
}

// NewRenderer parses the embedded template once.
func NewRenderer(converter PDFConverter) (*Renderer, error) {
	tmpl, err := template.New(templateName).Option("missingkey=zero").ParseFS(templateFS, "templates/"+templateName)
	if err != nil {
		return nil, &Error{Stage: "parse template", Cause: err}
	}
	return &Renderer{tmpl: tmpl, converter: converter}, nil
}

// RenderHTML executes the template for resume.
func (r *Renderer) RenderHTML(resume model.OptimizedResumeData) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateName, templateData{Resume: resume, CSS: stylesheet()}); err != nil {
		return "", &Error{Stage: "execute template", Cause: err}
	}
	return buf.String(), nil
}

// Render returns the PDF for resume. Empty output is a failure.
func (r *Renderer) Render(ctx context.Context, resume model.OptimizedResumeData) ([]byte, error) {
	start := time.Now()
	html, err := r.RenderHTML(resume)
	if err != nil {
		return nil, err
	}
	if r.converter == nil {
		return nil, &Error{Stage: "convert", Cause: errors.New("no PDF converter configured")}
	}
	pdf, err := r.converter.Convert(ctx, html)
	if err != nil {
		return nil, &Error{Stage: "convert", Cause: err}
	}
	if len(pdf) == 0 {
		return nil, &Error{Stage: "convert", Cause: errors.New("empty document")}
	}
	telemetry.Info("render.complete", map[string]any{
		"html_bytes":  len(html),
		"pdf_bytes":   len(pdf),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return pdf, nil
}
