// Package analysis turns raw model output into a validated optimize result.
package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"tailorhire-api/resume/model"
)

// Required top-level keys, in the order a missing one is reported.
var requiredKeys = []string{"analysis", "overall_match_score", "key_improvement_areas", "optimized_resume_data"}

// fenceRe matches a whole payload wrapped in one markdown code fence.
var fenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \\t]*\\r?\\n?(.*?)\\r?\\n?```$")

// Wrappers allowed before and after the object when the fence is incomplete.
var (
	leadingWrapRe  = regexp.MustCompile("(?i)^(?:`{1,3}[A-Za-z0-9_-]*|json)$")
	trailingWrapRe = regexp.MustCompile("^`{1,3}$")
)

var resultSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["analysis", "overall_match_score", "key_improvement_areas", "optimized_resume_data"]
}`)

// Result is a validated analysis. Raw is the parsed document as received.
type Result struct {
	Raw                 map[string]any
	Analysis            string
	OverallMatchScore   int
	KeyImprovementAreas []string
	Suggestions         []string
	Resume              model.OptimizedResumeData
}

// OptimizedResumeJSON returns the optimized_resume_data value as received.
func (r *Result) OptimizedResumeJSON() any {
	if r == nil {
		return nil
	}
	return r.Raw["optimized_resume_data"]
}

// Validate parses raw model output. Only the four required top-level keys
// gate acceptance; everything nested is decoded leniently.
func Validate(raw string) (*Result, error) {
	body := Unfence(raw)
	if body == "" {
		return nil, &MalformedResponseError{Cause: errors.New("empty response")}
	}

	doc, err := decodeObject(body)
	if err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}
	if field, err := firstMissing(doc); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	} else if field != "" {
		return nil, &MalformedResponseError{Field: field}
	}

	if _, ok := doc["optimized_resume_data"].(map[string]any); !ok {
		return nil, &MalformedResponseError{
			Field: "optimized_resume_data",
			Cause: fmt.Errorf("expected an object, got %s", kind(doc["optimized_resume_data"])),
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}

	return &Result{
		Raw:                 doc,
		Analysis:            text(doc["analysis"]),
		OverallMatchScore:   score(doc["overall_match_score"]),
		KeyImprovementAreas: nonNil(model.StringList(fields["key_improvement_areas"])),
		Suggestions:         nonNil(model.StringList(fields["suggestions"])),
		Resume:              model.DecodeOptimizedResume(fields["optimized_resume_data"]),
	}, nil
}

// Unfence trims raw and, when the whole text is one fenced block, returns
// the block's body. Otherwise fence debris outside the outermost braces is
// dropped. Text inside the braces is never touched.
func Unfence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}

	open := strings.Index(trimmed, "{")
	closing := strings.LastIndex(trimmed, "}")
	if open < 0 || closing < open {
		return trimmed
	}
	prefix := strings.TrimSpace(trimmed[:open])
	suffix := strings.TrimSpace(trimmed[closing+1:])
	if prefix != "" && !leadingWrapRe.MatchString(prefix) {
		return trimmed
	}
	if suffix != "" && !trailingWrapRe.MatchString(suffix) {
		return trimmed
	}
	return trimmed[open : closing+1]
}

func decodeObject(body string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse json: unexpected data after top-level value")
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse json: top-level value is %s, not an object", kind(v))
	}
	return doc, nil
}

func firstMissing(doc map[string]any) (string, error) {
	res, err := gojsonschema.Validate(resultSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return "", fmt.Errorf("schema check: %w", err)
	}
	if res.Valid() {
		return "", nil
	}
	missing := make(map[string]bool)
	for _, e := range res.Errors() {
		if e.Type() != "required" {
			continue
		}
		if prop, ok := e.Details()["property"].(string); ok {
			missing[prop] = true
		}
	}
	for _, key := range requiredKeys {
		if missing[key] {
			return key, nil
		}
	}
	return "", fmt.Errorf("schema check: %s", res.Errors()[0].String())
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(t)
		return strings.TrimSpace(buf.String())
	}
}

// score coerces numbers and numeric strings, rounding halves away from zero.
// Values beyond 0-100 pass through; anything that does not fit an int
// scores 0, as does anything non-numeric.
func score(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Round(f)
	if f >= math.MaxInt || f < math.MinInt {
		return 0
	}
	return int(f)
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
