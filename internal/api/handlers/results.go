package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/focustrack/backend/internal/analysis"
	"github.com/focustrack/backend/internal/db"
)

const untitledVideo = "Untitled Video"

type ResultsHandler struct {
	db       *db.Database
	bucketer analysis.Bucketer
}

func NewResultsHandler(database *db.Database, bucketer analysis.Bucketer) *ResultsHandler {
	return &ResultsHandler{db: database, bucketer: bucketer}
}

// Grouped returns every result row partitioned by date then time bucket.
func (h *ResultsHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	students, err := h.db.ListStudents()
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, h.bucketer.Group(students), http.StatusOK)
}

// Latest returns the most recent run's rows and average, joined with the
// current video's title.
func (h *ResultsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	students, err := h.db.ListStudents()
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}

	run := analysis.LatestRun(h.bucketer, students)
	jsonResponse(w, map[string]interface{}{
		"video_title": h.latestVideoTitle(),
		"time":        run.Time,
		"students":    run.Students,
		"average":     run.Average,
	}, http.StatusOK)
}

// Home backs the landing page: current video title plus all result rows.
func (h *ResultsHandler) Home(w http.ResponseWriter, r *http.Request) {
	students, err := h.db.ListStudents()
	if err != nil {
		jsonError(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"video_title": h.latestVideoTitle(),
		"students":    students,
	}, http.StatusOK)
}

// latestVideoTitle is best effort: a missing or unreadable record degrades to
// the default title rather than failing the page.
func (h *ResultsHandler) latestVideoTitle() string {
	video, err := h.db.CurrentVideo()
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Printf("failed to load current video: %v", err)
		}
		return untitledVideo
	}
	if video.VideoTitle == "" {
		return untitledVideo
	}
	return video.VideoTitle
}
