package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

const minDOCXChars = 50

var (
	blankLinesRe = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe   = regexp.MustCompile(` +`)
	nonASCIIRe   = regexp.MustCompile(`[^\x00-\x7F]+`)
)

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	paragraphs, rows, err := walkDocumentXML(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteString("\n")
	}
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	return cleanText(b.String()), nil
}

// walkDocumentXML returns body paragraphs in order followed by table rows.
// Each row is its cells' text joined by single spaces.
func walkDocumentXML(content string) (paragraphs, rows []string, err error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		para       strings.Builder
		inText     bool
		inRun      bool
		tableDepth int
		cells      []string
		cell       []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				if inRun {
					para.WriteString("\t")
				}
			case "br", "cr":
				if inRun {
					para.WriteString("\n")
				}
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					cells = cells[:0]
				}
			case "tc":
				if tableDepth == 1 {
					cell = cell[:0]
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					paragraphs = append(paragraphs, para.String())
				} else {
					cell = append(cell, para.String())
				}
				para.Reset()
			case "tc":
				if tableDepth == 1 {
					cells = append(cells, strings.TrimSpace(strings.Join(cell, "\n")))
				}
			case "tr":
				if tableDepth == 1 {
					rows = append(rows, strings.Join(cells, " "))
				}
			case "tbl":
				tableDepth--
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return paragraphs, rows, nil
}

func cleanText(text string) string {
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = nonASCIIRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
