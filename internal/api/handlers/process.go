package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/models"
	"github.com/nikhilbhutani/mediainsight/internal/pipeline"
	"github.com/nikhilbhutani/mediainsight/internal/queue"
)

type Processor interface {
	Process(ctx context.Context, in models.JobInput) (*pipeline.Outcome, error)
}

type JobQueue interface {
	EnqueueLinkProcess(ctx context.Context, payload queue.LinkProcessPayload) (string, error)
	TaskStatus(ctx context.Context, taskID string) (*queue.JobStatus, error)
}

type ProcessHandler struct {
	proc      Processor
	jobs      JobQueue
	maxUpload int64
}

// NewProcessHandler wires the processing endpoints. jobs may be nil, in
// which case the async endpoints answer 503.
func NewProcessHandler(proc Processor, jobs JobQueue, maxUploadMB int) *ProcessHandler {
	return &ProcessHandler{proc: proc, jobs: jobs, maxUpload: int64(maxUploadMB) << 20}
}

type processResponse struct {
	Message    string `json:"message"`
	Transcript string `json:"transcript"`
	BlogPost   string `json:"blog_post"`
	Summary    string `json:"summary"`
	HistoryID  string `json:"history_id,omitempty"`
}

type linkRequest struct {
	URL    string `json:"url"`
	UserID string `json:"user_id"`
}

type textRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

func (h *ProcessHandler) ProcessMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, apperr.Input("The uploaded file is too large."))
			return
		}
		writeError(w, r, apperr.Input("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := models.JobInput{Kind: models.InputMedia, UserID: r.FormValue("user_id")}
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		in.Data = file
		in.Filename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, r, apperr.Input("invalid file upload"))
		return
	}

	h.run(w, r, in)
}

func (h *ProcessHandler) ProcessLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.run(w, r, models.JobInput{Kind: models.InputLink, UserID: req.UserID, URL: req.URL})
}

func (h *ProcessHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.run(w, r, models.JobInput{Kind: models.InputText, UserID: req.UserID, Text: req.Text})
}

func (h *ProcessHandler) run(w http.ResponseWriter, r *http.Request, in models.JobInput) {
	out, err := h.proc.Process(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, processResponse{
		Message:    "Success",
		Transcript: out.Transcript,
		BlogPost:   out.BlogPost,
		Summary:    out.Summary,
		HistoryID:  out.HistoryID,
	})
}

func (h *ProcessHandler) ProcessLinkAsync(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "background jobs are not available"})
		return
	}
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in := models.JobInput{Kind: models.InputLink, UserID: req.UserID, URL: req.URL}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.jobs.EnqueueLinkProcess(r.Context(), queue.LinkProcessPayload{URL: req.URL, UserID: req.UserID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (h *ProcessHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "background jobs are not available"})
		return
	}
	st, err := h.jobs.TaskStatus(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
