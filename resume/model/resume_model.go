// Package model holds the optimized resume record produced by the model and
// consumed by the renderer.
package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptimizedResumeData is the tailored resume. Every field may be empty.
type OptimizedResumeData struct {
	Name           string          `json:"name"`
	ContactInfo    ContactInfo     `json:"contact_info"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Skills         Skills          `json:"skills"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
}

// ContactInfo captures optional contact details.
type ContactInfo struct {
	Location string `json:"location,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// IsEmpty reports whether no contact field is set.
func (c ContactInfo) IsEmpty() bool {
	return c.Location == "" && c.Email == "" && c.Phone == "" && c.LinkedIn == "" && c.GitHub == ""
}

// Experience is one job entry.
type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Dates       string   `json:"dates"`
	Description []string `json:"description"`
}

// Project is one project entry.
type Project struct {
	Name        string   `json:"name"`
	Dates       string   `json:"dates"`
	Link        string   `json:"link"`
	Description []string `json:"description"`
}

// Education is one degree entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Certification is one certification entry.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

// SkillCategory is a labelled group of skills.
type SkillCategory struct {
	Category string
	Skills   []string
}

// Skills keeps skill categories in the order the model listed them.
// It encodes as a JSON object of category to skill list.
type Skills []SkillCategory

// MarshalJSON writes the categories as an ordered object.
func (s Skills) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(group.Category)
		if err != nil {
			return nil, err
		}
		skills := group.Skills
		if skills == nil {
			skills = []string{}
		}
		val, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of category to skill list, keeping order.
func (s *Skills) UnmarshalJSON(data []byte) error {
	*s = decodeSkills(data)
	return nil
}

// Join returns the skills of a category separated by sep.
func (g SkillCategory) Join(sep string) string {
	return strings.Join(g.Skills, sep)
}
