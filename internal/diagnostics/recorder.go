// Package diagnostics keeps a short in-memory trail of connection
// activity per platform so the dashboard can show what happened during
// a failed authorization without trawling server logs.
package diagnostics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

// DefaultCapacity bounds how many entries are retained per platform.
const DefaultCapacity = 50

// Entry is one recorded event. Messages must never contain state tokens,
// authorization codes or client secrets.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Platform  models.Platform `json:"platform"`
	Message   string          `json:"message"`
}

// Recorder is a fixed-capacity ring of entries per platform, safe for
// concurrent use.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	rings    map[models.Platform][]Entry
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		capacity: capacity,
		rings:    make(map[models.Platform][]Entry),
	}
}

// Record appends a formatted message to the platform's ring, dropping the
// oldest entry when the ring is full.
func (r *Recorder) Record(platform models.Platform, format string, args ...interface{}) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Platform:  platform,
		Message:   fmt.Sprintf(format, args...),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ring := r.rings[platform]
	if len(ring) >= r.capacity {
		ring = ring[1:]
	}
	r.rings[platform] = append(ring, entry)
}

// Platform returns the retained entries for one platform, oldest first.
func (r *Recorder) Platform(platform models.Platform) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	ring := r.rings[platform]
	out := make([]Entry, len(ring))
	copy(out, ring)
	return out
}

// CopyAll returns every retained entry across platforms ordered by time.
func (r *Recorder) CopyAll() []Entry {
	r.mu.Lock()
	var out []Entry
	for _, ring := range r.rings {
		out = append(out, ring...)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
