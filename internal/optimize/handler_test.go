package optimize

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailorhire-api/internal/llm"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/resume/render"
)

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func newTestRouter(inv Invoker, rend DocumentRenderer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(&bytes.Buffer{})
	r := gin.New()
	NewHandler(NewService(inv, rend, nil)).RegisterRoutes(r.Group("/api"))
	return r
}

func postOptimize(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/optimize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func TestOptimizeHandlerSuccess(t *testing.T) {
	r := newTestRouter(&fakeInvoker{raw: modelPayload}, &fakeRenderer{out: []byte("%PDF-fake")})

	resp := postOptimize(r, `{"resume_text":"Jane Doe, Go engineer","job_description":"Go, Kubernetes","user_id":"u-1"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.EqualValues(t, 87, body["match_score"])
	assert.Equal(t, "Jane Doe, Go engineer", body["original_resume_text"])
	assert.Equal(t, []any{"Add Kubernetes", "Quantify impact"}, body["key_changes"])
	assert.Contains(t, body, "processing_time")
	assert.Contains(t, body, "optimized_resume_json")

	pdf, err := base64.StdEncoding.DecodeString(body["optimized_resume_pdf_base64"].(string))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
}

func TestOptimizeHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "blank resume", body: `{"resume_text":"  ","job_description":"Go"}`},
		{name: "missing job description", body: `{"resume_text":"Jane"}`},
		{name: "invalid json", body: `{"resume_text":`},
		{name: "wrong type", body: `{"resume_text":42,"job_description":"Go"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvoker{raw: modelPayload}
			r := newTestRouter(inv, &fakeRenderer{out: []byte("x")})

			resp := postOptimize(r, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Equal(t, "validation_error", decodeEnvelope(t, resp).Error.Code)
			assert.Empty(t, inv.prompts)
		})
	}
}

func TestOptimizeHandlerFailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		inv      *fakeInvoker
		rend     *fakeRenderer
		wantCode string
	}{
		{
			name:     "timeout",
			inv:      &fakeInvoker{err: fmt.Errorf("%w: after 300s", llm.ErrGenerationTimeout)},
			rend:     &fakeRenderer{out: []byte("x")},
			wantCode: "generation_timeout",
		},
		{
			name:     "generation failure",
			inv:      &fakeInvoker{err: fmt.Errorf("%w: 503", llm.ErrGenerationFailure)},
			rend:     &fakeRenderer{out: []byte("x")},
			wantCode: "generation_failure",
		},
		{
			name:     "malformed response",
			inv:      &fakeInvoker{raw: "I'm sorry, I cannot help with that."},
			rend:     &fakeRenderer{out: []byte("x")},
			wantCode: "malformed_response",
		},
		{
			name:     "rendering failure",
			inv:      &fakeInvoker{raw: modelPayload},
			rend:     &fakeRenderer{err: &render.Error{Stage: "convert", Cause: errors.New("chrome exited")}},
			wantCode: "rendering_failure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.inv, tt.rend)

			resp := postOptimize(r, `{"resume_text":"Jane","job_description":"Go"}`)
			assert.Equal(t, http.StatusInternalServerError, resp.Code)
			env := decodeEnvelope(t, resp)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
			assert.NotContains(t, resp.Body.String(), "optimized_resume_pdf_base64")
		})
	}
}

func TestClassifyUnknownErrorIsInternal(t *testing.T) {
	status, code, _ := classify(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", code)
}
