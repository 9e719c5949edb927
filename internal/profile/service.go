package profile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/focustrack/backend/internal/blob"
	"github.com/focustrack/backend/internal/db"
	"github.com/focustrack/backend/internal/db/models"
)

// MaxPictureSize is the largest accepted profile picture.
const MaxPictureSize = 5 << 20

var (
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrPictureTooBig  = errors.New("file size must be less than 5MB")
	ErrNotAnImage     = errors.New("only image files are allowed")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store is the profile slice of the database.
type Store interface {
	GetProfile(id string) (*models.Profile, error)
	GetProfileByUsername(username string) (*models.Profile, error)
	CreateProfile(p *models.Profile) error
	UpdateProfile(id string, p *models.Profile) (*models.Profile, error)
}

// Uploader is the blob slice needed for profile pictures.
type Uploader interface {
	Upload(bucket, name string, r io.Reader) (string, error)
}

type Service struct {
	store    Store
	blobs    Uploader
	validate *validator.Validate
}

func NewService(store Store, blobs Uploader) *Service {
	v := validator.New()
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return &Service{store: store, blobs: blobs, validate: v}
}

// Update carries the full desired state of a profile's mutable fields. The
// saved record replaces the caller's copy wholesale; nothing is merged.
type Update struct {
	Username       string   `json:"username" validate:"required,min=3,username"`
	FullName       string   `json:"full_name"`
	Institution    string   `json:"institution"`
	Subjects       []string `json:"subjects"`
	ProfilePicture string   `json:"profile_picture"`
}

// Fetch returns the user's profile, creating a default one on first read. The
// default username is the local part of the account email; if another user
// already claimed it, a short suffix is appended.
func (s *Service) Fetch(userID, email string) (*models.Profile, error) {
	p, err := s.store.GetProfile(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	defaultProfile := &models.Profile{
		ID:       userID,
		Email:    email,
		Username: usernameFromEmail(email),
		Subjects: []string{},
	}
	if err := s.store.CreateProfile(defaultProfile); err != nil {
		if !errors.Is(err, db.ErrConflict) {
			return nil, err
		}
		// Another account owns the derived username.
		defaultProfile.Username = fmt.Sprintf("%s-%d", defaultProfile.Username, time.Now().Unix()%100000)
		if err := s.store.CreateProfile(defaultProfile); err != nil {
			return nil, err
		}
	}
	return s.store.GetProfile(userID)
}

// Save validates and persists a profile update. Validation failures and
// username conflicts abort the save entirely; no field is partially committed.
func (s *Service) Save(userID string, upd Update) (*models.Profile, error) {
	upd.Username = strings.TrimSpace(upd.Username)
	if err := s.validate.Struct(upd); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, usernameMessage(err))
	}

	current, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	// Optimistic pre-check; the store's unique constraint is the authority.
	if upd.Username != current.Username {
		existing, err := s.store.GetProfileByUsername(upd.Username)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrUsernameTaken
		}
	}

	subjects := upd.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	saved, err := s.store.UpdateProfile(userID, &models.Profile{
		Username:       upd.Username,
		FullName:       upd.FullName,
		Institution:    upd.Institution,
		Subjects:       subjects,
		ProfilePicture: upd.ProfilePicture,
	})
	if err != nil {
		// Lost the race between pre-check and write.
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return saved, nil
}

// UploadPicture validates, stores and links a new profile picture. Size and
// type are checked before any blob call; any failure leaves the previous
// picture in place.
func (s *Service) UploadPicture(userID, filename, contentType string, size int64, r io.Reader) (*models.Profile, error) {
	if size > MaxPictureSize {
		return nil, ErrPictureTooBig
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrNotAnImage
	}

	current, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	// Name derived from user id and time so uploads never collide.
	name := fmt.Sprintf("%s-%d%s", userID, time.Now().UnixMilli(), filepath.Ext(filename))
	url, err := s.blobs.Upload(blob.BucketProfilePictures, name, r)
	if err != nil {
		return nil, err
	}

	return s.Save(userID, Update{
		Username:       current.Username,
		FullName:       current.FullName,
		Institution:    current.Institution,
		Subjects:       current.Subjects,
		ProfilePicture: url,
	})
}

// usernameFromEmail derives a default username from the local part of an
// email, mapping characters outside the allowed set to underscores and padding
// so the result always passes username validation.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	username := b.String()
	if username == "" {
		username = "user"
	}
	for len(username) < 3 {
		username += "_"
	}
	return username
}

// usernameMessage turns validator errors into the user-facing messages the
// dashboard shows next to the username field.
func usernameMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid input"
	}
	for _, fe := range verrs {
		if fe.Field() != "Username" {
			continue
		}
		switch fe.Tag() {
		case "required":
			return "username cannot be empty"
		case "min":
			return "username must be at least 3 characters long"
		case "username":
			return "username can only contain letters, numbers, underscores, and hyphens"
		}
	}
	return "invalid input"
}
