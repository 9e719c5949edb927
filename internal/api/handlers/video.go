package handlers

import (
	"errors"
	"net/http"

	"github.com/focustrack/backend/internal/analysis"
	"github.com/focustrack/backend/internal/db"
)

type VideoHandler struct {
	db       *db.Database
	pipeline *analysis.Pipeline
}

func NewVideoHandler(database *db.Database, pipeline *analysis.Pipeline) *VideoHandler {
	return &VideoHandler{db: database, pipeline: pipeline}
}

// Upload accepts a video file and replaces the current video with it. Every
// client entry point (file picker, drag and drop) funnels into this one
// operation. Video files are accepted unconditionally; only pictures have a
// size/type gate.
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	record, err := h.pipeline.Submit(header.Filename, file)
	if err != nil {
		jsonError(w, "failed to upload video", http.StatusInternalServerError)
		return
	}

	remaining, _ := h.pipeline.Remaining()
	jsonResponse(w, map[string]interface{}{
		"video":             record,
		"seconds_remaining": int(remaining.Seconds()),
	}, http.StatusCreated)
}

// Current reports the current video record plus the derived countdown. Clients
// poll this instead of running their own timers.
func (h *VideoHandler) Current(w http.ResponseWriter, r *http.Request) {
	record, err := h.db.CurrentVideo()
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			jsonResponse(w, map[string]interface{}{"video": nil}, http.StatusOK)
			return
		}
		jsonError(w, "failed to load video", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"video": record}
	if remaining, processing := h.pipeline.Remaining(); processing {
		resp["seconds_remaining"] = int(remaining.Seconds())
	}
	jsonResponse(w, resp, http.StatusOK)
}
