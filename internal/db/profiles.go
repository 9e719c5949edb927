package db

import (
	"database/sql"
	"encoding/json"

	"github.com/focustrack/backend/internal/db/models"
)

const profileColumns = "id, email, username, full_name, institution, subjects, profile_picture, created_at, updated_at"

func (d *Database) GetProfile(id string) (*models.Profile, error) {
	row := d.db.QueryRow("SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	return scanProfile(row)
}

func (d *Database) GetProfileByUsername(username string) (*models.Profile, error) {
	row := d.db.QueryRow("SELECT "+profileColumns+" FROM profiles WHERE username = ?", username)
	return scanProfile(row)
}

// CreateProfile inserts a new profile. Empty optional fields are stored as NULL.
func (d *Database) CreateProfile(p *models.Profile) error {
	subjects, err := encodeSubjects(p.Subjects)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`
		INSERT INTO profiles (id, email, username, full_name, institution, subjects, profile_picture)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Username,
		nullString(p.FullName), nullString(p.Institution),
		subjects, nullString(p.ProfilePicture),
	)
	return wrapErr(err)
}

// UpdateProfile overwrites the mutable fields of a profile and returns the
// stored record, which is the caller's new authoritative copy.
func (d *Database) UpdateProfile(id string, p *models.Profile) (*models.Profile, error) {
	subjects, err := encodeSubjects(p.Subjects)
	if err != nil {
		return nil, err
	}
	res, err := d.db.Exec(`
		UPDATE profiles
		SET username = ?, full_name = ?, institution = ?, subjects = ?, profile_picture = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Username,
		nullString(p.FullName), nullString(p.Institution),
		subjects, nullString(p.ProfilePicture),
		id,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return d.GetProfile(id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	var fullName, institution, picture sql.NullString
	var subjects string
	err := row.Scan(&p.ID, &p.Email, &p.Username, &fullName, &institution,
		&subjects, &picture, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	p.FullName = fullName.String
	p.Institution = institution.String
	p.ProfilePicture = picture.String
	if err := json.Unmarshal([]byte(subjects), &p.Subjects); err != nil {
		p.Subjects = []string{}
	}
	if p.Subjects == nil {
		p.Subjects = []string{}
	}
	return p, nil
}

func encodeSubjects(subjects []string) (string, error) {
	if subjects == nil {
		subjects = []string{}
	}
	b, err := json.Marshal(subjects)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
