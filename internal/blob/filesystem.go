package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Bucket names used by the service.
const (
	BucketVideos          = "videos"
	BucketProfilePictures = "profile-pictures"
)

// Store is a filesystem-backed blob store. Objects live under
// basePath/<bucket>/<name> and are served publicly under baseURL/<bucket>/<name>.
type Store struct {
	basePath string
	baseURL  string
}

func NewStore(basePath, baseURL string) (*Store, error) {
	for _, bucket := range []string{BucketVideos, BucketProfilePictures} {
		if err := os.MkdirAll(filepath.Join(basePath, bucket), 0755); err != nil {
			return nil, err
		}
	}
	return &Store{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath is the filesystem root, exposed so the router can serve objects.
func (s *Store) BasePath() string {
	return s.basePath
}

// Upload writes an object and returns its public URL.
func (s *Store) Upload(bucket, name string, r io.Reader) (string, error) {
	path, err := s.objectPath(bucket, name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return s.PublicURL(bucket, name), nil
}

func (s *Store) Remove(bucket, name string) error {
	path, err := s.objectPath(bucket, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (s *Store) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/blobs/%s/%s", s.baseURL, bucket, name)
}

// List returns the object names in a bucket.
func (s *Store) List(bucket string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, filepath.Clean(bucket)))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// objectPath resolves bucket/name inside basePath, rejecting traversal.
func (s *Store) objectPath(bucket, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", os.ErrPermission
	}
	fullPath := filepath.Join(s.basePath, bucket, name)

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return "", os.ErrPermission
	}
	return fullPath, nil
}
