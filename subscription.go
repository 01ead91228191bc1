package statebus

import "github.com/google/uuid"

// Callback receives a published value. Callbacks run synchronously in the
// publisher's goroutine; a slow callback delays the publisher and every
// subscription after it in delivery order.
type Callback func(value any)

// Filter decides whether a subscription receives a given value. Filters
// run outside the stream lock and may safely call back into the stream,
// but should be fast and side-effect free.
type Filter func(value any) bool

// Subscription is the handle returned by Subscribe. It carries a unique
// identity assigned at subscribe time and is mutated only through its own
// methods. All methods are safe for concurrent use and are no-ops once the
// subscription has been removed from its stream.
type Subscription struct {
	id     string
	stream *Stream

	callback Callback
	filter   Filter
	replay   ReplayPolicy // empty means "use the stream default"

	// paused and removed are guarded by stream.mu.
	paused  bool
	removed bool
}

func newSubscription(s *Stream, cb Callback, opts subscribeOptions) *Subscription {
	return &Subscription{
		id:       uuid.New().String(),
		stream:   s,
		callback: cb,
		filter:   opts.filter,
		replay:   opts.replay,
	}
}

// ID returns the unique subscription identity. It is generated at
// subscribe time and never derived from the callback.
func (sub *Subscription) ID() string {
	return sub.id
}

// Paused reports whether the subscription is currently paused.
func (sub *Subscription) Paused() bool {
	sub.stream.mu.Lock()
	defer sub.stream.mu.Unlock()
	return sub.paused
}

// Active reports whether the subscription is still registered with its stream.
func (sub *Subscription) Active() bool {
	sub.stream.mu.Lock()
	defer sub.stream.mu.Unlock()
	return !sub.removed
}

// Pause stops all deliveries to this subscription, replay included, until
// Resume is called. Pausing an already-paused or removed subscription is a
// no-op.
func (sub *Subscription) Pause() {
	sub.stream.pause(sub)
}

// Resume clears the paused flag and re-runs the subscribe-time replay
// against the current buffer contents before returning. Values published
// while paused are not recovered unless they are still in the buffer.
// Resuming a removed subscription is a no-op.
func (sub *Subscription) Resume() {
	sub.stream.resume(sub)
}

// Unsubscribe removes the subscription from its stream. It is idempotent;
// once removed the subscription never receives another delivery and
// Pause/Resume become no-ops.
func (sub *Subscription) Unsubscribe() {
	sub.stream.unsubscribe(sub)
}

// accepts reports whether the value passes the subscription's filter.
func (sub *Subscription) accepts(v any) bool {
	return sub.filter == nil || sub.filter(v)
}

// effectivePolicy resolves the per-subscription override against the
// stream default.
func (sub *Subscription) effectivePolicy(def ReplayPolicy) ReplayPolicy {
	if sub.replay.Valid() {
		return sub.replay
	}
	return def
}

// deliver invokes the callback for each value the filter accepts. Runs
// outside the stream lock.
func (sub *Subscription) deliver(values []any) {
	for _, v := range values {
		if sub.accepts(v) {
			sub.callback(v)
		}
	}
}
