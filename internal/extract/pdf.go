package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"tailorhire-api/internal/shared/telemetry"
)

const pageSeparator = "\n\n"

// extractPDF joins the text of every readable page. A page that errors or
// panics inside the PDF library is skipped with a warning.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	numPages := reader.NumPage()
	parts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pageText, err := pageText(reader, i)
		if err != nil {
			telemetry.Warn("extract.pdf_page_skipped", map[string]any{"page": i, "err": err.Error()})
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			telemetry.Warn("extract.pdf_page_empty", map[string]any{"page": i})
			continue
		}
		parts = append(parts, pageText)
	}
	return strings.TrimSpace(strings.Join(parts, pageSeparator)), nil
}

func pageText(reader *pdf.Reader, i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", i, rec)
		}
	}()
	page := reader.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
