// Package optimize runs the resume optimization pipeline: prompt, generate,
// validate, render.
package optimize

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"tailorhire-api/internal/analysis"
	"tailorhire-api/internal/llm"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/internal/shared/workpool"
	"tailorhire-api/resume/model"
	"tailorhire-api/resume/render"
)

// Pipeline stages, used in errors, logs and metrics.
const (
	StageGenerate = "llm"
	StageValidate = "validate"
	StageRender   = "render"
)

// Invoker sends a prompt to the model.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// DocumentRenderer produces the optimized resume document.
type DocumentRenderer interface {
	Render(ctx context.Context, resume model.OptimizedResumeData) ([]byte, error)
}

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Response is the optimize response body.
type Response struct {
	OptimizedResumePDFBase64 string   `json:"optimized_resume_pdf_base64"`
	OriginalResumeText       string   `json:"original_resume_text"`
	OptimizedResumeJSON      any      `json:"optimized_resume_json"`
	MatchScore               int      `json:"match_score"`
	KeyChanges               []string `json:"key_changes"`
	Suggestions              []string `json:"suggestions"`
	ProcessingTime           float64  `json:"processing_time"`
}

// Service runs one optimize request at a time per call; calls are independent.
type Service struct {
	Invoker  Invoker
	Renderer DocumentRenderer
	Pool     *workpool.Pool
	Now      func() time.Time
}

// NewService wires the pipeline stages.
func NewService(invoker Invoker, renderer DocumentRenderer, pool *workpool.Pool) *Service {
	return &Service{Invoker: invoker, Renderer: renderer, Pool: pool, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Optimize validates req and runs every stage in order. No partial result is
// returned: either the full response or an error.
func (s *Service) Optimize(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	prompt := llm.BuildOptimizePrompt(req.ResumeText, req.JobDescription)
	raw, err := s.Invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	result, err := analysis.Validate(raw)
	if err != nil {
		telemetry.Error("optimize.malformed_response", map[string]any{
			"err":           err.Error(),
			"response_size": len(raw),
		})
		return nil, &StageError{Stage: StageValidate, Err: err}
	}
	telemetry.Info("optimize.analysis", map[string]any{
		"match_score":  result.OverallMatchScore,
		"improvements": len(result.KeyImprovementAreas),
	})

	pdf, err := s.render(ctx, result.Resume)
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}

	optimized := result.OptimizedResumeJSON()
	if optimized == nil {
		optimized = result.Resume
	}
	return &Response{
		OptimizedResumePDFBase64: base64.StdEncoding.EncodeToString(pdf),
		OriginalResumeText:       req.ResumeText,
		OptimizedResumeJSON:      optimized,
		MatchScore:               result.OverallMatchScore,
		KeyChanges:               result.KeyImprovementAreas,
		Suggestions:              result.Suggestions,
		ProcessingTime:           s.now().Sub(start).Seconds(),
	}, nil
}

func (s *Service) render(ctx context.Context, resume model.OptimizedResumeData) ([]byte, error) {
	var pdf []byte
	job := func() error {
		var err error
		pdf, err = s.Renderer.Render(ctx, resume)
		return err
	}
	var err error
	if s.Pool != nil {
		err = s.Pool.Do(ctx, job)
	} else {
		err = job()
	}
	if err != nil {
		if !errors.Is(err, render.ErrRenderingFailure) {
			err = &render.Error{Stage: "queue", Cause: err}
		}
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, &render.Error{Stage: "convert", Cause: errors.New("renderer returned no bytes")}
	}
	return pdf, nil
}
