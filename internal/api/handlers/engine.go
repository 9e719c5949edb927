package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/focustrack/backend/internal/db"
	"github.com/focustrack/backend/internal/db/models"
)

// EngineHandler is the write surface for the external analysis engine. The
// engine itself is a black box; it just posts finished result rows here.
type EngineHandler struct {
	db    *db.Database
	token string
}

func NewEngineHandler(database *db.Database, token string) *EngineHandler {
	return &EngineHandler{db: database, token: token}
}

type engineResult struct {
	StudentID           string   `json:"st_id"`
	AttentionPercentage *float64 `json:"attention_percentage"`
	Image               string   `json:"image"`
	ChatbotResponse     string   `json:"chatbot_response"`
}

// IngestResults appends a batch of student rows. Disabled unless ENGINE_TOKEN
// is configured; authenticated via the X-Engine-Token header.
func (h *EngineHandler) IngestResults(w http.ResponseWriter, r *http.Request) {
	if h.token == "" {
		jsonError(w, "engine ingest disabled", http.StatusForbidden)
		return
	}
	got := r.Header.Get("X-Engine-Token")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
		jsonError(w, "invalid engine token", http.StatusUnauthorized)
		return
	}

	var results []engineResult
	if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(results) == 0 {
		jsonError(w, "empty batch", http.StatusBadRequest)
		return
	}

	// One timestamp for the whole batch so the rows land in one time bucket.
	now := time.Now()
	inserted := 0
	for _, res := range results {
		if res.StudentID == "" {
			continue
		}
		s := &models.Student{
			StudentID:           res.StudentID,
			AttentionPercentage: res.AttentionPercentage,
			Image:               res.Image,
			ChatbotResponse:     res.ChatbotResponse,
			CreatedAt:           now,
		}
		if err := h.db.InsertStudent(s); err != nil {
			jsonError(w, "failed to store results", http.StatusInternalServerError)
			return
		}
		inserted++
	}

	jsonResponse(w, map[string]int{"inserted": inserted}, http.StatusCreated)
}
