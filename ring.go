package statebus

// ring is a fixed-capacity FIFO buffer of published values. Once capacity
// is reached, each push evicts the oldest entry. It is not safe for
// concurrent use on its own; the owning stream's mutex guards it.
type ring struct {
	values []any
	size   int
	head   int
	count  int
}

func newRing(size int) *ring {
	return &ring{
		values: make([]any, size),
		size:   size,
	}
}

// push appends a value, evicting the oldest when full.
func (r *ring) push(v any) {
	r.values[r.head] = v
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// snapshot returns the buffered values, oldest first. The returned slice
// is freshly allocated and safe for the caller to retain or mutate.
func (r *ring) snapshot() []any {
	if r.count == 0 {
		return nil
	}

	out := make([]any, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		out[i] = r.values[(start+i)%r.size]
	}
	return out
}

// newest returns the most recently pushed value, if any.
func (r *ring) newest() (any, bool) {
	if r.count == 0 {
		return nil, false
	}
	return r.values[(r.head-1+r.size)%r.size], true
}

// clear empties the buffer and drops references to buffered values.
func (r *ring) clear() {
	for i := range r.values {
		r.values[i] = nil
	}
	r.head = 0
	r.count = 0
}
