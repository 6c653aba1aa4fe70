package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const defaultSkillCategory = "Skills"

// DecodeOptimizedResume reads raw leniently: missing fields and fields of
// the wrong type become empty values instead of errors.
func DecodeOptimizedResume(raw json.RawMessage) OptimizedResumeData {
	fields := rawObject(raw)
	if fields == nil {
		return OptimizedResumeData{}
	}

	out := OptimizedResumeData{
		Name:    rawString(fields["name"]),
		Summary: rawString(fields["summary"]),
		Skills:  decodeSkills(fields["skills"]),
	}
	if contact := rawObject(fields["contact_info"]); contact != nil {
		out.ContactInfo = ContactInfo{
			Location: rawString(contact["location"]),
			Email:    rawString(contact["email"]),
			Phone:    rawString(contact["phone"]),
			LinkedIn: rawString(contact["linkedin"]),
			GitHub:   rawString(contact["github"]),
		}
	}
	for _, e := range rawObjects(fields["experience"]) {
		out.Experience = append(out.Experience, Experience{
			Title:       rawString(e["title"]),
			Company:     rawString(e["company"]),
			Location:    rawString(e["location"]),
			Dates:       rawString(e["dates"]),
			Description: StringList(e["description"]),
		})
	}
	for _, p := range rawObjects(fields["projects"]) {
		out.Projects = append(out.Projects, Project{
			Name:        rawString(p["name"]),
			Dates:       rawString(p["dates"]),
			Link:        rawString(p["link"]),
			Description: StringList(p["description"]),
		})
	}
	for _, e := range rawObjects(fields["education"]) {
		out.Education = append(out.Education, Education{
			Degree:      rawString(e["degree"]),
			Institution: rawString(e["institution"]),
			Year:        rawString(e["year"]),
		})
	}
	for _, c := range rawObjects(fields["certifications"]) {
		out.Certifications = append(out.Certifications, Certification{
			Name:   rawString(c["name"]),
			Issuer: rawString(c["issuer"]),
			Year:   rawString(c["year"]),
		})
	}
	return out
}

// StringList returns the string items of a JSON array, skipping other
// types. A lone non-empty string is treated as a one-item list.
func StringList(raw json.RawMessage) []string {
	var v any
	if err := unmarshalNumber(raw, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

func decodeSkills(raw json.RawMessage) Skills {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// A flat list of skills gets a single default category.
		if list := StringList(raw); len(list) > 0 {
			return Skills{{Category: defaultSkillCategory, Skills: list}}
		}
		return nil
	}

	var out Skills
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := keyTok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return out
		}
		list := StringList(val)
		if strings.TrimSpace(key) == "" || len(list) == 0 {
			continue
		}
		out = append(out, SkillCategory{Category: strings.TrimSpace(key), Skills: list})
	}
	return out
}

func rawObject(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func rawObjects(raw json.RawMessage) []map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		if m := rawObject(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// rawString accepts strings and numbers (years often arrive as numbers).
func rawString(raw json.RawMessage) string {
	var v any
	if err := unmarshalNumber(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func unmarshalNumber(raw json.RawMessage, v *any) error {
	if len(raw) == 0 {
		return errEmpty
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

var errEmpty = errors.New("empty value")
