package audio

import "sync"

// DefaultWindowCapacity holds one second of 44.1 kHz samples
const DefaultWindowCapacity = 44100

// SampleWindow is a fixed-capacity overwrite ring of the most recent samples.
// Pushes never fail and never block; once full, the oldest samples are
// dropped. The lock keeps a snapshot from observing a half-applied push if
// ingestion and rendering ever run on different goroutines.
type SampleWindow struct {
	mu      sync.RWMutex
	samples []int16
	head    int // next write position
	count   int
}

// NewSampleWindow creates a window with the given capacity. A non-positive
// capacity falls back to DefaultWindowCapacity.
func NewSampleWindow(capacity int) *SampleWindow {
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	return &SampleWindow{
		samples: make([]int16, capacity),
	}
}

// PushOverwrite appends samples, evicting the oldest entries as needed
func (w *SampleWindow) PushOverwrite(samples []int16) {
	if len(samples) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	capacity := len(w.samples)

	// only the tail of an oversized push can survive
	if len(samples) >= capacity {
		copy(w.samples, samples[len(samples)-capacity:])
		w.head = 0
		w.count = capacity
		return
	}

	n := copy(w.samples[w.head:], samples)
	if n < len(samples) {
		copy(w.samples, samples[n:])
	}
	w.head = (w.head + len(samples)) % capacity
	w.count = min(w.count+len(samples), capacity)
}

// Snapshot returns the current contents, oldest to newest, in a fresh slice
func (w *SampleWindow) Snapshot() []int16 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]int16, w.count)
	if w.count == 0 {
		return out
	}

	capacity := len(w.samples)
	start := (w.head - w.count + capacity) % capacity
	n := copy(out, w.samples[start:min(start+w.count, capacity)])
	copy(out[n:], w.samples[:w.count-n])
	return out
}

// Len returns the number of buffered samples
func (w *SampleWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}

// Capacity returns the fixed capacity
func (w *SampleWindow) Capacity() int {
	return len(w.samples)
}

// Fill returns Len/Capacity in [0, 1]
func (w *SampleWindow) Fill() float64 {
	return float64(w.Len()) / float64(w.Capacity())
}

// Reset drops all buffered samples
func (w *SampleWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.head = 0
	w.count = 0
}
