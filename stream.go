package statebus

import (
	"log/slog"
	"sync"
)

// Stream is a bounded-history multicast value stream for a single channel.
// Published values are appended to a FIFO history buffer and delivered
// synchronously to every eligible subscription; new subscribers receive a
// replay of buffered history per the effective replay policy before
// Subscribe returns.
//
// Stream is safe for concurrent use. State mutation is serialized behind a
// single per-stream mutex; callbacks and filters run outside the lock, so
// a callback may safely publish or subscribe reentrantly. A reentrant
// Publish completes its own full delivery pass before the outer pass
// continues with its remaining subscribers.
type Stream struct {
	name   string
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	buffer *ring
	subs   []*Subscription
}

// NewStream creates a standalone stream with the given config. Callers
// addressing streams by name normally obtain them via Registry.Channel
// instead; standalone streams never appear in any channel map.
func NewStream(name string, cfg Config) (*Stream, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	return newStream(name, cfg, discardLogger()), nil
}

// newStream assumes cfg is already normalized.
func newStream(name string, cfg Config, logger *slog.Logger) *Stream {
	return &Stream{
		name:   name,
		config: cfg,
		logger: logger,
		buffer: newRing(cfg.BufferSize),
	}
}

// Name returns the channel name the stream was created under.
func (s *Stream) Name() string {
	return s.name
}

// Config returns the config the stream was created from.
func (s *Stream) Config() Config {
	return s.config
}

// ReplayPolicy returns the stream's default replay policy.
func (s *Stream) ReplayPolicy() ReplayPolicy {
	return s.config.Replay
}

// Publish appends value to the history buffer, evicting the oldest entry
// if capacity would be exceeded, then delivers it synchronously to every
// non-paused subscription whose filter accepts it, in subscription order.
// Publish returns after the last eligible callback has returned.
//
// The eligible set is snapshotted before delivery: subscriptions added,
// removed, or paused by a callback do not affect the in-flight pass.
// Delivery is fail-fast: a panicking callback propagates to the publisher
// and the remaining subscriptions in the pass are not notified. Wrap
// callbacks with the Recover decorator for isolate-and-continue semantics.
func (s *Stream) Publish(value any) {
	s.mu.Lock()
	s.buffer.push(value)
	targets := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if !sub.paused {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("value published",
		slog.String("channel", s.name),
		slog.Int("subscriptions", len(targets)))

	for _, sub := range targets {
		if sub.accepts(value) {
			sub.callback(value)
		}
	}
}

// Subscribe registers a callback and immediately replays buffered history
// to it per the effective replay policy: the newest buffered value for
// ReplayLast, the entire buffer oldest-first for ReplayAll, nothing when
// the buffer is empty. The replay completes before Subscribe returns. The
// new subscription is appended to the delivery order.
//
// Subscribe panics if cb is nil; use Registry.Subscribe for validated
// errors instead of panics.
func (s *Stream) Subscribe(cb Callback, opts ...SubscribeOption) *Subscription {
	if cb == nil {
		panic("statebus: nil subscription callback")
	}

	sub := newSubscription(s, cb, newSubscribeOptions(opts...))

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	backlog := s.replayBacklogLocked(sub)
	s.mu.Unlock()

	s.logger.Debug("subscription added",
		slog.String("channel", s.name),
		slog.String("subscription_id", sub.id),
		slog.Int("replayed", len(backlog)))

	sub.deliver(backlog)
	return sub
}

// Buffer returns a copy of the current history, oldest first. Mutating the
// returned slice does not affect the stream.
func (s *Stream) Buffer() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.snapshot()
}

// ClearBuffer empties the history buffer. Existing subscriptions are
// untouched and nothing is delivered; replays after this point see an
// empty history until new values are published.
func (s *Stream) ClearBuffer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.clear()
}

// ObserverCount returns the number of active subscriptions, paused
// subscriptions included.
func (s *Stream) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// UnsubscribeAll removes every subscription. Previously issued handles
// become permanently inert: Pause, Resume, and Unsubscribe on them are
// no-ops.
func (s *Stream) UnsubscribeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub.removed = true
	}
	s.subs = nil
}

// replayBacklogLocked selects the buffered values owed to sub per its
// effective replay policy. The caller holds s.mu; the subscription's
// filter is applied later, outside the lock.
func (s *Stream) replayBacklogLocked(sub *Subscription) []any {
	switch sub.effectivePolicy(s.config.Replay) {
	case ReplayAll:
		return s.buffer.snapshot()
	default:
		if v, ok := s.buffer.newest(); ok {
			return []any{v}
		}
		return nil
	}
}

func (s *Stream) pause(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.removed {
		return
	}
	sub.paused = true
}

func (s *Stream) resume(sub *Subscription) {
	s.mu.Lock()
	if sub.removed {
		s.mu.Unlock()
		return
	}
	sub.paused = false
	backlog := s.replayBacklogLocked(sub)
	s.mu.Unlock()

	sub.deliver(backlog)
}

func (s *Stream) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.removed {
		return
	}
	sub.removed = true
	for i, cur := range s.subs {
		if cur.id == sub.id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
}
