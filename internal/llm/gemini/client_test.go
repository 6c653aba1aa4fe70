package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFromResponseJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"analysis":`), genai.Text(`"ok"}`)}},
		}},
	}
	got, err := textFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"analysis":"ok"}`, got)
}

func TestTextFromResponseErrors(t *testing.T) {
	_, err := textFromResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = textFromResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)

	_, err = textFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}}},
	})
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)
}
