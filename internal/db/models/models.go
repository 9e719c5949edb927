package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the editable identity record attached to a user. Email and ID are
// immutable copies of the account identity; everything else is user-controlled.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Institution    string    `json:"institution"`
	Subjects       []string  `json:"subjects"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Student is one analyzed student from one analysis run. Rows are written by the
// external analysis engine; this service only reads them.
type Student struct {
	ID                  int64     `json:"id"`
	StudentID           string    `json:"st_id"`
	AttentionPercentage *float64  `json:"attention_percentage"`
	Image               string    `json:"image,omitempty"`
	ChatbotResponse     string    `json:"chatbot_response,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// VideoAnalysis tracks the single current uploaded video. Uploading a new video
// replaces the previous record.
type VideoAnalysis struct {
	ID         int64     `json:"id"`
	VideoURL   string    `json:"video_url"`
	VideoTitle string    `json:"video_title"`
	Status     string    `json:"status"` // processing, completed
	CreatedAt  time.Time `json:"created_at"`
}
