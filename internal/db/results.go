package db

import (
	"database/sql"
	"time"

	"github.com/focustrack/backend/internal/db/models"
)

// ListStudents returns every analysis result row, newest first. Full-table
// retrieval; acceptable only while result volume stays small.
func (d *Database) ListStudents() ([]models.Student, error) {
	rows, err := d.db.Query(`
		SELECT id, st_id, attention_percentage, image, chatbot_response, created_at
		FROM students ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		var attention sql.NullFloat64
		var image, chatbot sql.NullString
		if err := rows.Scan(&s.ID, &s.StudentID, &attention, &image, &chatbot, &s.CreatedAt); err != nil {
			return nil, err
		}
		if attention.Valid {
			v := attention.Float64
			s.AttentionPercentage = &v
		}
		s.Image = image.String
		s.ChatbotResponse = chatbot.String
		students = append(students, s)
	}
	return students, rows.Err()
}

// InsertStudent records one result row. Only the external analysis engine's
// ingest endpoint calls this; the dashboard itself never writes student rows.
func (d *Database) InsertStudent(s *models.Student) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var attention interface{}
	if s.AttentionPercentage != nil {
		attention = *s.AttentionPercentage
	}
	res, err := d.db.Exec(`
		INSERT INTO students (st_id, attention_percentage, image, chatbot_response, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.StudentID, attention, nullString(s.Image), nullString(s.ChatbotResponse), createdAt,
	)
	if err != nil {
		return wrapErr(err)
	}
	s.ID, _ = res.LastInsertId()
	s.CreatedAt = createdAt
	return nil
}

// CurrentVideo returns the single most recent video record, or ErrNotFound.
func (d *Database) CurrentVideo() (*models.VideoAnalysis, error) {
	v := &models.VideoAnalysis{}
	err := d.db.QueryRow(`
		SELECT id, video_url, video_title, status, created_at
		FROM video_analysis ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&v.ID, &v.VideoURL, &v.VideoTitle, &v.Status, &v.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}

// ReplaceVideo deletes any previous video records and inserts the new one in a
// single transaction, preserving the at-most-one-current-video invariant even
// if the process dies between the two statements.
func (d *Database) ReplaceVideo(videoURL, videoTitle string) (*models.VideoAnalysis, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM video_analysis"); err != nil {
		return nil, err
	}
	now := time.Now()
	res, err := tx.Exec(`
		INSERT INTO video_analysis (video_url, video_title, status, created_at)
		VALUES (?, ?, 'processing', ?)`,
		videoURL, videoTitle, now,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	id, _ := res.LastInsertId()
	return &models.VideoAnalysis{
		ID:         id,
		VideoURL:   videoURL,
		VideoTitle: videoTitle,
		Status:     "processing",
		CreatedAt:  now,
	}, nil
}

// SetVideoStatus flips the processing status of a video record.
func (d *Database) SetVideoStatus(id int64, status string) error {
	_, err := d.db.Exec("UPDATE video_analysis SET status = ? WHERE id = ?", status, id)
	return err
}
