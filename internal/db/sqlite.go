package db

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/focustrack/backend/internal/auth"
	"github.com/focustrack/backend/internal/db/models"
)

var (
	// ErrNotFound distinguishes "no such row" from transport/query failures so
	// callers can run their create-on-first-read paths.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is a uniqueness-constraint violation (e.g. profiles.username).
	ErrConflict = errors.New("unique constraint violated")
)

type Database struct {
	db *sql.DB
}

func NewSQLite(path string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	d := &Database{db: sqlDB}
	if err := d.migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Database) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		username TEXT UNIQUE NOT NULL,
		full_name TEXT,
		institution TEXT,
		subjects TEXT NOT NULL DEFAULT '[]',
		profile_picture TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		st_id TEXT NOT NULL,
		attention_percentage REAL,
		image TEXT,
		chatbot_response TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS video_analysis (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_url TEXT NOT NULL,
		video_title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'processing',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := d.db.Exec(schema)
	return err
}

// EnsureUser creates an account with the given credentials if no account exists
// yet, so a fresh deployment is immediately usable.
func (d *Database) EnsureUser(email, password string) error {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		"INSERT INTO users (id, email, password) VALUES (?, ?, ?)",
		uuid.New().String(), email, hash,
	)
	return err
}

func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, email, password, created_at FROM users WHERE email = ?",
		email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (d *Database) GetUserByID(id string) (*models.User, error) {
	u := &models.User{}
	err := d.db.QueryRow(
		"SELECT id, email, password, created_at FROM users WHERE id = ?",
		id,
	).Scan(&u.ID, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// wrapErr maps driver errors onto the store's sentinel errors.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrConflict
		}
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
