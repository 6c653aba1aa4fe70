package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "analysis": "Strong backend profile; lacks cloud keywords.",
  "overall_match_score": 87,
  "key_improvement_areas": ["Added Kubernetes keywords", "Quantified impact"],
  "suggestions": ["Add a certification"],
  "optimized_resume_data": {
    "name": "Jane Doe",
    "contact_info": {"email": "jane@example.com"},
    "skills": {"Programming": ["Go"]}
  }
}`

func TestValidateAcceptsPlainJSON(t *testing.T) {
	res, err := Validate(validPayload)
	require.NoError(t, err)

	assert.Equal(t, "Strong backend profile; lacks cloud keywords.", res.Analysis)
	assert.Equal(t, 87, res.OverallMatchScore)
	assert.Equal(t, []string{"Added Kubernetes keywords", "Quantified impact"}, res.KeyImprovementAreas)
	assert.Equal(t, []string{"Add a certification"}, res.Suggestions)
	assert.Equal(t, "Jane Doe", res.Resume.Name)
	assert.Equal(t, "jane@example.com", res.Resume.ContactInfo.Email)
	require.Len(t, res.Resume.Skills, 1)
	assert.Contains(t, res.Raw, "optimized_resume_data")
}

func TestValidateStripsWholePayloadFence(t *testing.T) {
	for name, raw := range map[string]string{
		"json tag":     "```json\n" + validPayload + "\n```",
		"no tag":       "```\n" + validPayload + "\n```",
		"crlf":         "```json\r\n" + validPayload + "\r\n```",
		"padded":       "  \n```JSON \n" + validPayload + "```\n\n",
		"single line":  "```" + `{"analysis":"a","overall_match_score":1,"key_improvement_areas":[],"optimized_resume_data":{}}` + "```",
		"opening only": "```json\n" + validPayload,
		"closing only": validPayload + "\n```",
		"bare tag":     "json\n" + validPayload,
		"upper tag":    "JSON " + validPayload,
		"single ticks": "`" + validPayload + "`",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Validate(raw)
			require.NoError(t, err)
			assert.NotNil(t, res.Raw["analysis"])
		})
	}
}

func TestValidateKeepsJSONTextInsidePayload(t *testing.T) {
	// Character-level stripping of "json" would corrupt these values.
	raw := `{"analysis":"json","overall_match_score":50,"key_improvement_areas":["json"],"optimized_resume_data":{"summary":"jsonjson"}}`
	res, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "json", res.Analysis)
	assert.Equal(t, []string{"json"}, res.KeyImprovementAreas)
	assert.Equal(t, "jsonjson", res.Resume.Summary)
}

func TestValidateMissingFieldNamedInOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"missing analysis", `{"overall_match_score":1,"key_improvement_areas":[],"optimized_resume_data":{}}`, "analysis"},
		{"missing score", `{"analysis":"a","key_improvement_areas":[],"optimized_resume_data":{}}`, "overall_match_score"},
		{"missing areas", `{"analysis":"a","overall_match_score":1,"optimized_resume_data":{}}`, "key_improvement_areas"},
		{"missing resume", `{"analysis":"a","overall_match_score":1,"key_improvement_areas":[]}`, "optimized_resume_data"},
		{"all missing", `{}`, "analysis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			var mre *MalformedResponseError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, tt.want, mre.Field)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRejectsUnparseable(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":         "Sorry, I cannot help with that.",
		"empty":         "   ",
		"array":         `[{"analysis":"a"}]`,
		"trailing data": validPayload + ` {"extra":true}`,
		"truncated":     `{"analysis":"a","overall_match_score":`,
		"prose prefix":  "Here you go: " + validPayload,
		"prose suffix":  validPayload + "\nHope this helps!",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			var mre *MalformedResponseError
			require.True(t, errors.As(err, &mre))
			assert.Empty(t, mre.Field)
		})
	}
}

func TestValidateScoreCoercion(t *testing.T) {
	tests := []struct {
		score any
		want  int
	}{
		{87, 87},
		{87.5, 88},
		{"92", 92},
		{" 75% ", 75},
		{150, 150},
		{-3, -3},
		{"high", 0},
		{nil, 0},
		{true, 0},
		{1e300, 0},
		{-1e300, 0},
		{"9.3e18", 0},
	}
	for _, tt := range tests {
		doc := map[string]any{
			"analysis":              "a",
			"overall_match_score":   tt.score,
			"key_improvement_areas": []string{},
			"optimized_resume_data": map[string]any{},
		}
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		res, err := Validate(string(raw))
		require.NoError(t, err, "score %v", tt.score)
		assert.Equal(t, tt.want, res.OverallMatchScore, "score %v", tt.score)
	}
}

func TestValidateDefaultsOptionalLists(t *testing.T) {
	res, err := Validate(`{"analysis":"a","overall_match_score":1,"key_improvement_areas":"one thing","optimized_resume_data":{}}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one thing"}, res.KeyImprovementAreas)
	assert.Equal(t, []string{}, res.Suggestions)
	assert.Empty(t, res.Resume.Name)
	assert.Equal(t, map[string]any{}, res.OptimizedResumeJSON())
}

func TestValidateRejectsNonObjectResumeData(t *testing.T) {
	for name, value := range map[string]string{
		"null":   "null",
		"string": `"see above"`,
		"array":  `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(`{"analysis":"a","overall_match_score":1,"key_improvement_areas":[],"optimized_resume_data":` + value + `}`)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			var mre *MalformedResponseError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, "optimized_resume_data", mre.Field)
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	first, err := Validate("```json\n" + validPayload + "\n```")
	require.NoError(t, err)

	reencoded, err := json.Marshal(first.Raw)
	require.NoError(t, err)
	second, err := Validate(string(reencoded))
	require.NoError(t, err)

	assert.Equal(t, first.Raw, second.Raw)
	assert.Equal(t, first.OverallMatchScore, second.OverallMatchScore)
	assert.Equal(t, first.Resume, second.Resume)
}

func TestUnfenceLeavesInnerFencesAlone(t *testing.T) {
	assert.Equal(t, "prefix ```json {} ```", Unfence("  prefix ```json {} ```  "))
}

func TestUnfenceDropsLooseWrappers(t *testing.T) {
	body := `{"summary":"uses ` + "```" + ` and json inside"}`
	tests := map[string]string{
		"opening fence":      "```json\n" + body,
		"opening fence only": "```\n" + body,
		"closing fence":      body + "\n```",
		"bare tag":           "json " + body,
		"single ticks":       "`" + body + "`",
		"untouched":          body,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, body, Unfence(raw))
		})
	}
}
