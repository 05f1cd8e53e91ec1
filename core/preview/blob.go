package preview

import (
	"sync"
	"time"
)

// Blob is a transient handle over fetched binary content backing a plan.
//
// Release is idempotent and may come from the viewer being dismissed, the
// plan being discarded, or the auto-release grace period elapsing,
// whichever is observed first. After release the payload is gone and
// Bytes returns ErrReleased.
type Blob struct {
	mu       sync.Mutex
	data     []byte
	timer    *time.Timer
	released bool
}

// NewBlob wraps data in a releasable handle. A positive grace duration
// arms an auto-release timer; zero or negative leaves release fully
// manual.
func NewBlob(data []byte, grace time.Duration) *Blob {
	b := &Blob{data: data}
	if grace > 0 {
		b.timer = time.AfterFunc(grace, b.Release)
	}
	return b
}

// Bytes returns the payload, or ErrReleased once the blob was released.
func (b *Blob) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return nil, ErrReleased
	}
	return b.data, nil
}

// Len reports the payload size, zero after release.
func (b *Blob) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Release drops the payload and stops any pending auto-release timer.
// Safe to call any number of times, from any goroutine.
func (b *Blob) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true
	b.data = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Released reports whether the payload has been dropped.
func (b *Blob) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
