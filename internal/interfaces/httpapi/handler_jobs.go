package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/usecase"
)

type crawlJobRequest struct {
	StartID *int64 `json:"start_id" validate:"omitempty,min=1"`
}

type listJobRunsRequest struct {
	JobName string `validate:"omitempty,oneof=crawl_incremental crawl_historical card_sync meta_snapshot"`
	Limit   *int   `validate:"omitempty,min=1,max=500"`
}

func (h *Handler) RunCrawlJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCrawlJob")
	defer span.End()

	var req crawlJobRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.triggerJob(w, r, jobrun.JobCrawlIncremental, req.StartID)
}

func (h *Handler) RunCardSyncJob(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, r, jobrun.JobCardSync, nil)
}

func (h *Handler) RunMetaJob(w http.ResponseWriter, r *http.Request) {
	h.triggerJob(w, r, jobrun.JobMetaSnapshot, nil)
}

func (h *Handler) triggerJob(w http.ResponseWriter, r *http.Request, jobName string, startID *int64) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.triggerJob")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	run, err := h.jobService.Trigger(ctx, jobName, startID)
	if err != nil {
		h.logger.WarnContext(ctx, "trigger job failed", "job", jobName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, jobRunToDTO(run))
}

func (h *Handler) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobRuns")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	query := r.URL.Query()
	req := listJobRunsRequest{JobName: strings.TrimSpace(query.Get("job"))}
	limit, err := optionalInt(query, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Limit = limit
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	filter := jobrun.Filter{JobName: req.JobName}
	if req.Limit != nil {
		filter.Limit = *req.Limit
	}
	runs, err := h.jobService.ListRuns(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "list job runs failed", "job", req.JobName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(runs, jobRunToDTO))
}

// decodeOptionalJSON accepts an empty body as the zero request.
func decodeOptionalJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
