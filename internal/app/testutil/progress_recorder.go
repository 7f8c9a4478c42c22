package testutil

import "sync"

// ProgressRecorder captures every reported progress percentage
type ProgressRecorder struct {
	mu     sync.Mutex
	values []int
}

// Progress records one value
func (r *ProgressRecorder) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, percent)
}

// Values returns a copy of the recorded values
func (r *ProgressRecorder) Values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.values))
	copy(out, r.values)
	return out
}

// Last returns the most recent value, or -1 when nothing was reported
func (r *ProgressRecorder) Last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return -1
	}
	return r.values[len(r.values)-1]
}

// IsMonotonic reports whether values never decrease
func IsMonotonic(values []int) bool {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return false
		}
	}
	return true
}
