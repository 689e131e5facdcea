package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/quantfoot/pipeline/internal/domain/pipelinerun"
	"github.com/quantfoot/pipeline/internal/usecase"
)

const maxPipelineRequestBytes = 64 << 10

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type pipelineRunRequest struct {
	Resources     []string `json:"resources" validate:"omitempty,max=16,dive,required,max=64"`
	Models        []string `json:"models" validate:"omitempty,max=64,dive,required,max=128"`
	SkipExtract   bool     `json:"skip_extract"`
	SkipTransform bool     `json:"skip_transform"`
	SkipMerge     bool     `json:"skip_merge"`
}

// TriggerPipelineRun runs the pipeline synchronously and answers with the
// recorded outcome.
func (h *Handler) TriggerPipelineRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerPipelineRun")
	defer span.End()

	if h.pipelineService == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req pipelineRunRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.pipelineService.Run(ctx, usecase.PipelineInput{
		Trigger:       pipelinerun.TriggerHTTP,
		Resources:     req.Resources,
		Models:        req.Models,
		SkipExtract:   req.SkipExtract,
		SkipTransform: req.SkipTransform,
		SkipMerge:     req.SkipMerge,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "pipeline run request failed", "run_id", result.RunID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListPipelineRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPipelineRuns")
	defer span.End()

	if h.pipelineService == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	runs, err := h.pipelineService.ListRuns(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list pipeline runs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]pipelineRunDTO, 0, len(runs))
	for _, run := range runs {
		out = append(out, pipelineRunToDTO(run))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetPipelineRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPipelineRun")
	defer span.End()

	if h.pipelineService == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	run, err := h.pipelineService.GetRun(ctx, r.PathValue("runID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, pipelineRunToDTO(run))
}

// decodeOptionalJSON treats an empty body as the zero request.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPipelineRequestBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read request body: %s", usecase.ErrInvalidInput, err.Error())
	}
	if len(body) > maxPipelineRequestBytes {
		return fmt.Errorf("%w: request body too large", usecase.ErrInvalidInput)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := strictJSON.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %s", usecase.ErrInvalidInput, strings.TrimSpace(err.Error()))
	}
	return nil
}
