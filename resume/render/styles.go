package render

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// RunStyle captures the text formatting of one resume element.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int // points
	Color  string
}

const (
	HeadingColor = "1F2937"
	NameColor    = "111111"
	MetaColor    = "4B5563"
	HeadingSize  = 12
	NameSize     = 20
)

// StyleMap maps CSS class names used by the template to their formatting.
var StyleMap = map[string]RunStyle{
	"name": {
		Bold:  true,
		Size:  NameSize,
		Color: NameColor,
	},
	"section-heading": {
		Bold:  true,
		Size:  HeadingSize,
		Color: HeadingColor,
	},
	"role-line": {
		Bold: true,
	},
	"meta": {
		Italic: true,
		Color:  MetaColor,
	},
}

func (s RunStyle) css() string {
	var rules []string
	if s.Bold {
		rules = append(rules, "font-weight: bold")
	}
	if s.Italic {
		rules = append(rules, "font-style: italic")
	}
	if s.Size > 0 {
		rules = append(rules, fmt.Sprintf("font-size: %dpt", s.Size))
	}
	if s.Color != "" {
		rules = append(rules, "color: #"+s.Color)
	}
	return strings.Join(rules, "; ")
}

// stylesheet renders StyleMap as class rules in a stable order.
func stylesheet() template.CSS {
	names := make([]string, 0, len(StyleMap))
	for name := range StyleMap {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, ".%s { %s; }\n", name, StyleMap[name].css())
	}
	return template.CSS(b.String())
}
