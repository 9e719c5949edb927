package analysis

import (
	"io"
	"log"
	"net/url"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/focustrack/backend/internal/blob"
	"github.com/focustrack/backend/internal/db/models"
)

// VideoStore is the slice of the database the pipeline needs.
type VideoStore interface {
	CurrentVideo() (*models.VideoAnalysis, error)
	ReplaceVideo(videoURL, videoTitle string) (*models.VideoAnalysis, error)
	SetVideoStatus(id int64, status string) error
}

// BlobStore is the slice of the blob layer the pipeline needs.
type BlobStore interface {
	Upload(bucket, name string, r io.Reader) (string, error)
	Remove(bucket, name string) error
	List(bucket string) ([]string, error)
}

// Pipeline owns the single-current-video invariant and the processing schedule.
// At most one video is tracked at a time: submitting a new one removes the
// previous file and record, then schedules one completion at a fixed delay.
// The countdown shown to clients is derived from that one deadline rather than
// ticked by a second timer.
type Pipeline struct {
	store      VideoStore
	blobs      BlobStore
	delay      time.Duration
	isNotFound func(error) bool

	// submitMu serializes replacements so two concurrent uploads cannot
	// interleave their remove/upload/swap sequences.
	submitMu sync.Mutex

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
}

// NewPipeline creates a pipeline. isNotFound classifies the store's "no current
// video" error so an empty table is not treated as a failure.
func NewPipeline(store VideoStore, blobs BlobStore, delay time.Duration, isNotFound func(error) bool) *Pipeline {
	return &Pipeline{store: store, blobs: blobs, delay: delay, isNotFound: isNotFound}
}

// Submit replaces the current video with a new upload. Sequencing: look up the
// existing record, remove its backing file, upload the new file under a fresh
// unique name, then swap the records transactionally and schedule completion.
// Blob removal is best effort; a file orphaned by a later failure is collected
// by ReconcileOrphans on the next startup.
func (p *Pipeline) Submit(filename string, r io.Reader) (*models.VideoAnalysis, error) {
	p.submitMu.Lock()
	defer p.submitMu.Unlock()

	current, err := p.store.CurrentVideo()
	if err != nil && !p.isNotFound(err) {
		return nil, err
	}
	if current != nil {
		if name := ObjectName(current.VideoURL); name != "" {
			if err := p.blobs.Remove(blob.BucketVideos, name); err != nil {
				log.Printf("[pipeline] failed to remove previous video %s: %v", name, err)
			}
		}
	}

	name := uuid.New().String() + filepath.Ext(filename)
	videoURL, err := p.blobs.Upload(blob.BucketVideos, name, r)
	if err != nil {
		return nil, err
	}

	record, err := p.store.ReplaceVideo(videoURL, filename)
	if err != nil {
		// The uploaded file is now unreferenced; reconciliation will collect it.
		return nil, err
	}

	p.schedule(record.ID)
	return record, nil
}

// schedule arms the single completion timer, replacing any previous one.
func (p *Pipeline) schedule(recordID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.deadline = time.Now().Add(p.delay)
	p.timer = time.AfterFunc(p.delay, func() { p.complete(recordID) })
}

func (p *Pipeline) complete(recordID int64) {
	p.mu.Lock()
	p.timer = nil
	p.deadline = time.Time{}
	p.mu.Unlock()

	if err := p.store.SetVideoStatus(recordID, "completed"); err != nil {
		log.Printf("[pipeline] failed to mark video %d completed: %v", recordID, err)
		return
	}
	log.Printf("[pipeline] video %d marked completed", recordID)
}

// Remaining returns the time left until the scheduled completion and whether a
// video is currently processing.
func (p *Pipeline) Remaining() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer == nil {
		return 0, false
	}
	d := time.Until(p.deadline)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Stop cancels any outstanding completion timer. Called on shutdown so the
// callback never fires against a closed database.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
		p.deadline = time.Time{}
	}
}

// ReconcileOrphans removes video-bucket objects not referenced by the current
// record. Run at startup to clean up after partial upload failures.
func (p *Pipeline) ReconcileOrphans() (int, error) {
	keep := ""
	current, err := p.store.CurrentVideo()
	if err != nil && !p.isNotFound(err) {
		return 0, err
	}
	if current != nil {
		keep = ObjectName(current.VideoURL)
	}

	names, err := p.blobs.List(blob.BucketVideos)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if name == keep {
			continue
		}
		if err := p.blobs.Remove(blob.BucketVideos, name); err != nil {
			log.Printf("[pipeline] failed to remove orphaned video %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// ObjectName extracts the blob object name from a public URL.
func ObjectName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
