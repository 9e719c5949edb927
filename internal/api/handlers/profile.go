package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/focustrack/backend/internal/api/middleware"
	"github.com/focustrack/backend/internal/profile"
)

type ProfileHandler struct {
	profiles *profile.Service
}

func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get returns the caller's profile, creating a default one on first read.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.profiles.Fetch(claims.UserID, claims.Email)
	if err != nil {
		jsonError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, p, http.StatusOK)
}

// Update saves the full set of editable fields and returns the stored record.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var upd profile.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.profiles.Save(claims.UserID, upd)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	jsonResponse(w, saved, http.StatusOK)
}

// UploadPicture accepts a multipart image and links it to the profile.
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Slack above the picture cap so an oversized file gets the proper
	// validation message instead of a truncated-body error.
	r.Body = http.MaxBytesReader(w, r.Body, profile.MaxPictureSize*2)
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	saved, err := h.profiles.UploadPicture(
		claims.UserID, header.Filename, header.Header.Get("Content-Type"), header.Size, file,
	)
	if err != nil {
		writeProfileError(w, err)
		return
	}
	jsonResponse(w, saved, http.StatusOK)
}

func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrUsernameTaken):
		jsonError(w, "Username is already taken. Please choose a different username.", http.StatusConflict)
	case errors.Is(err, profile.ErrInvalidProfile):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, profile.ErrPictureTooBig), errors.Is(err, profile.ErrNotAnImage):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		jsonError(w, "failed to save profile", http.StatusInternalServerError)
	}
}
