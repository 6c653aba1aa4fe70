package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/resume/model"
)

func init() {
	telemetry.SetOutput(&bytes.Buffer{})
}

type fakeConverter struct {
	out  []byte
	err  error
	html string
}

func (f *fakeConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	f.html = html
	return f.out, f.err
}

func sampleResume() model.OptimizedResumeData {
	return model.OptimizedResumeData{
		Name:        "Jane <Doe>",
		ContactInfo: model.ContactInfo{Email: "jane@example.com", GitHub: "github.com/jane"},
		Summary:     "Platform engineer.",
		Experience: []model.Experience{{
			Title: "Senior Engineer", Company: "Acme", Dates: "2020 - Present",
			Description: []string{"Cut deploy time by 80%."},
		}},
		Skills:         model.Skills{{Category: "Programming", Skills: []string{"Go", "Python"}}},
		Education:      []model.Education{{Degree: "BSc", Institution: "TU Berlin", Year: "2015"}},
		Certifications: []model.Certification{{Name: "CKA", Issuer: "CNCF", Year: "2022"}},
	}
}

func TestRenderHTMLBindsResume(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	html, err := r.RenderHTML(sampleResume())
	require.NoError(t, err)

	assert.Contains(t, html, "Jane &lt;Doe&gt;")
	assert.Contains(t, html, "jane@example.com")
	assert.Contains(t, html, "Cut deploy time by 80%.")
	assert.Contains(t, html, "Go, Python")
	assert.Contains(t, html, "CNCF")
	assert.Contains(t, html, ".section-heading {")
	assert.NotContains(t, html, "Projects")
}

func TestRenderHTMLToleratesEmptyResume(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	html, err := r.RenderHTML(model.OptimizedResumeData{})
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Resume</title>")
	assert.NotContains(t, html, "Experience")
	assert.NotContains(t, html, `class="contact"`)
}

func TestRenderConvertsHTML(t *testing.T) {
	conv := &fakeConverter{out: []byte("%PDF-1.4 fake")}
	r, err := NewRenderer(conv)
	require.NoError(t, err)

	pdf, err := r.Render(context.Background(), sampleResume())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), pdf)
	assert.True(t, strings.HasPrefix(conv.html, "<!DOCTYPE html>"))
}

func TestRenderFailures(t *testing.T) {
	tests := []struct {
		name string
		conv PDFConverter
	}{
		{"converter error", &fakeConverter{err: errors.New("chrome not found")}},
		{"empty output", &fakeConverter{out: nil}},
		{"no converter", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRenderer(tt.conv)
			require.NoError(t, err)

			pdf, err := r.Render(context.Background(), sampleResume())
			assert.Nil(t, pdf)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRenderingFailure)
			var rerr *Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, "convert", rerr.Stage)
		})
	}
}

func TestStylesheetIsStable(t *testing.T) {
	assert.Equal(t, stylesheet(), stylesheet())
	assert.Contains(t, string(stylesheet()), ".name { font-weight: bold; font-size: 20pt; color: #111111; }")
}
