package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return s
}

func TestUploadAndPublicURL(t *testing.T) {
	s := newTestStore(t)

	url, err := s.Upload(BucketVideos, "lecture.mp4", strings.NewReader("video-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/videos/lecture.mp4", url)

	data, err := os.ReadFile(filepath.Join(s.BasePath(), BucketVideos, "lecture.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Upload(BucketProfilePictures, "pic.png", strings.NewReader("img"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(BucketProfilePictures, "pic.png"))
	_, err = os.Stat(filepath.Join(s.BasePath(), BucketProfilePictures, "pic.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	names, err := s.List(BucketVideos)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = s.Upload(BucketVideos, "a.mp4", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = s.Upload(BucketVideos, "b.mp4", strings.NewReader("b"))
	require.NoError(t, err)

	names, err = s.List(BucketVideos)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.mp4", "b.mp4"}, names)
}

func TestRejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"../escape.mp4", "a/b.mp4", "..", ".hidden", ""} {
		_, err := s.Upload(BucketVideos, name, strings.NewReader("x"))
		assert.Error(t, err, "name %q must be rejected", name)
		assert.Error(t, s.Remove(BucketVideos, name))
	}
}

func TestTrailingSlashBaseURL(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://host/")
	require.NoError(t, err)
	assert.Equal(t, "http://host/blobs/videos/x.mp4", s.PublicURL(BucketVideos, "x.mp4"))
}
