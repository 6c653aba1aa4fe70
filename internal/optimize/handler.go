package optimize

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tailorhire-api/internal/analysis"
	"tailorhire-api/internal/llm"
	"tailorhire-api/internal/shared/metrics"
	"tailorhire-api/internal/shared/server/middleware"
	"tailorhire-api/internal/shared/server/respond"
	"tailorhire-api/internal/shared/telemetry"
	"tailorhire-api/internal/shared/util"
	"tailorhire-api/resume/render"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches optimize routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/optimize", h.optimize)
}

func (h *Handler) optimize(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.UserID != "" {
		c.Set("userId", util.HashUserID(req.UserID))
	}

	metrics.IncOptimizeRequests()
	start := time.Now()
	telemetry.Info("optimize.start", map[string]any{
		"request_id":          middleware.RequestIDFromContext(c),
		"resume_chars":        len(req.ResumeText),
		"job_description_len": len(req.JobDescription),
	})

	resp, err := h.Svc.Optimize(c.Request.Context(), req)
	metrics.ObserveOptimizeDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		h.fail(c, err)
		return
	}

	telemetry.Info("optimize.complete", map[string]any{
		"request_id":      middleware.RequestIDFromContext(c),
		"match_score":     resp.MatchScore,
		"processing_time": resp.ProcessingTime,
	})
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume_text and job_description are required", verr.Fields)
		return
	}

	stage := "unknown"
	var serr *StageError
	if errors.As(err, &serr) {
		stage = serr.Stage
	}
	c.Set(middleware.StageKey, stage)
	metrics.IncOptimizeFailure(stage)
	telemetry.Error("optimize.failed", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"stage":      stage,
		"err":        err.Error(),
	})

	status, code, message := classify(err)
	respond.Error(c, status, code, message, nil)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, llm.ErrGenerationTimeout):
		return http.StatusInternalServerError, "generation_timeout", "The AI model took too long to respond. Please try again later."
	case errors.Is(err, llm.ErrGenerationFailure):
		return http.StatusInternalServerError, "generation_failure", "AI analysis failed"
	case errors.Is(err, analysis.ErrMalformedResponse):
		return http.StatusInternalServerError, "malformed_response", "Could not parse AI response"
	case errors.Is(err, render.ErrRenderingFailure):
		return http.StatusInternalServerError, "rendering_failure", "Failed to generate PDF"
	default:
		return http.StatusInternalServerError, "internal", "Unexpected server error"
	}
}
