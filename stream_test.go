package statebus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statekit/statebus"
)

func newTestStream(t *testing.T, cfg statebus.Config) *statebus.Stream {
	t.Helper()
	s, err := statebus.NewStream("test", cfg)
	require.NoError(t, err)
	return s
}

func TestStream_BoundedBuffer(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 3})

	for i := 1; i <= 5; i++ {
		s.Publish(i)
	}

	assert.Equal(t, []any{3, 4, 5}, s.Buffer())
}

func TestStream_BufferIsSnapshot(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 3})
	s.Publish("a")
	s.Publish("b")

	buf := s.Buffer()
	buf[0] = "mutated"

	assert.Equal(t, []any{"a", "b"}, s.Buffer())
}

func TestStream_ReplayLast(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5})
	s.Publish("a")
	s.Publish("b")

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) })

	// Replay completes before Subscribe returns.
	assert.Equal(t, []any{"b"}, got)
}

func TestStream_ReplayLastEmptyBuffer(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5})

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) })

	assert.Empty(t, got)
}

func TestStream_ReplayAll(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5, Replay: statebus.ReplayAll})
	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) })

	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestStream_ReplayOverride(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5})
	s.Publish(1)
	s.Publish(2)

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) },
		statebus.WithReplay(statebus.ReplayAll))

	assert.Equal(t, []any{1, 2}, got)
	assert.Equal(t, statebus.ReplayLast, s.ReplayPolicy())
}

func TestStream_DeliveryOrder(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})

	var order []string
	s.Subscribe(func(v any) { order = append(order, "first") })
	s.Subscribe(func(v any) { order = append(order, "second") })
	s.Publish("x")

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStream_FilterCorrectness(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 10})

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) },
		statebus.WithFilter(func(v any) bool { return v.(int)%2 == 0 }))

	for i := 1; i <= 4; i++ {
		s.Publish(i)
	}

	assert.Equal(t, []any{2, 4}, got)
}

func TestStream_FilterAppliesToReplay(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 10, Replay: statebus.ReplayAll})
	for i := 1; i <= 4; i++ {
		s.Publish(i)
	}

	var got []any
	s.Subscribe(func(v any) { got = append(got, v) },
		statebus.WithFilter(func(v any) bool { return v.(int)%2 == 0 }))

	assert.Equal(t, []any{2, 4}, got)
}

func TestStream_PauseResume(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 3})

	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })
	require.Empty(t, got)

	sub.Pause()
	assert.True(t, sub.Paused())

	s.Publish("x")
	s.Publish("y")
	assert.Empty(t, got, "no deliveries while paused")

	// Resume replays the current buffer per the effective policy: with
	// ReplayLast only "y" arrives, "x" is never delivered.
	sub.Resume()
	assert.False(t, sub.Paused())
	assert.Equal(t, []any{"y"}, got)

	s.Publish("z")
	assert.Equal(t, []any{"y", "z"}, got)
}

func TestStream_PauseIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})
	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })

	sub.Pause()
	sub.Pause()
	s.Publish(1)
	assert.Empty(t, got)
}

func TestStream_ResumeOnActiveReplays(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 2})
	s.Publish("a")

	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })
	require.Equal(t, []any{"a"}, got)

	// Resume on a never-paused subscription still re-runs the replay.
	sub.Resume()
	assert.Equal(t, []any{"a", "a"}, got)
}

func TestStream_UnsubscribeIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})

	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })
	other := s.Subscribe(func(v any) {})
	require.Equal(t, 2, s.ObserverCount())

	sub.Unsubscribe()
	sub.Unsubscribe()

	assert.Equal(t, 1, s.ObserverCount())
	assert.False(t, sub.Active())
	assert.True(t, other.Active())

	s.Publish("x")
	assert.Empty(t, got)
}

func TestStream_UnsubscribeAll(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 2})

	var got []any
	sub := s.Subscribe(func(v any) { got = append(got, v) })
	s.Subscribe(func(v any) {})
	require.Equal(t, 2, s.ObserverCount())

	s.UnsubscribeAll()
	assert.Equal(t, 0, s.ObserverCount())

	// Issued handles are permanently inert.
	s.Publish("x")
	sub.Resume()
	sub.Pause()
	sub.Unsubscribe()
	assert.Empty(t, got)
	assert.False(t, sub.Active())
}

func TestStream_ClearBuffer(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5, Replay: statebus.ReplayAll})
	s.Publish(1)
	s.Publish(2)

	var before []any
	s.Subscribe(func(v any) { before = append(before, v) })
	require.Equal(t, []any{1, 2}, before)

	s.ClearBuffer()
	assert.Empty(t, s.Buffer())
	assert.Equal(t, 1, s.ObserverCount(), "subscriptions survive a buffer clear")

	var after []any
	s.Subscribe(func(v any) { after = append(after, v) })
	assert.Empty(t, after, "replay sees an empty history")
}

func TestStream_ObserverCountIncludesPaused(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})
	sub := s.Subscribe(func(v any) {})
	sub.Pause()

	assert.Equal(t, 1, s.ObserverCount())
}

func TestStream_SnapshotDelivery(t *testing.T) {
	t.Parallel()

	t.Run("unsubscribe mid-pass does not affect the in-flight pass", func(t *testing.T) {
		t.Parallel()

		s := newTestStream(t, statebus.Config{})

		var got []any
		var victim *statebus.Subscription
		s.Subscribe(func(v any) { victim.Unsubscribe() })
		victim = s.Subscribe(func(v any) { got = append(got, v) })

		s.Publish("x")
		assert.Equal(t, []any{"x"}, got, "snapshotted subscription still receives the current value")

		s.Publish("y")
		assert.Equal(t, []any{"x"}, got, "removed subscription receives nothing afterwards")
	})

	t.Run("pause mid-pass does not affect the in-flight pass", func(t *testing.T) {
		t.Parallel()

		s := newTestStream(t, statebus.Config{})

		var got []any
		var victim *statebus.Subscription
		s.Subscribe(func(v any) { victim.Pause() })
		victim = s.Subscribe(func(v any) { got = append(got, v) })

		s.Publish("x")
		assert.Equal(t, []any{"x"}, got)

		s.Publish("y")
		assert.Equal(t, []any{"x"}, got)
	})
}

func TestStream_ReentrantPublish(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 5})

	type delivery struct {
		sub   string
		value any
	}
	var deliveries []delivery

	s.Subscribe(func(v any) {
		deliveries = append(deliveries, delivery{"a", v})
		if v == 1 {
			s.Publish(2)
		}
	})
	s.Subscribe(func(v any) {
		deliveries = append(deliveries, delivery{"b", v})
	})

	s.Publish(1)

	// The reentrant publish runs its full pass before the outer pass
	// continues with its remaining subscribers.
	assert.Equal(t, []delivery{
		{"a", 1},
		{"a", 2},
		{"b", 2},
		{"b", 1},
	}, deliveries)
	assert.Equal(t, []any{1, 2}, s.Buffer())
}

func TestStream_PanicFailFast(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{BufferSize: 2})

	var got []any
	s.Subscribe(func(v any) { panic("subscriber blew up") })
	s.Subscribe(func(v any) { got = append(got, v) })

	require.PanicsWithValue(t, "subscriber blew up", func() {
		s.Publish("x")
	})

	assert.Empty(t, got, "remaining subscribers are not notified")
	assert.Equal(t, []any{"x"}, s.Buffer(), "the value is buffered before delivery")
}

func TestStream_NilCallbackPanics(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})
	require.Panics(t, func() {
		s.Subscribe(nil)
	})
}

func TestStream_SubscriptionIdentity(t *testing.T) {
	t.Parallel()

	s := newTestStream(t, statebus.Config{})

	// Two subscriptions sharing one callback remain distinct.
	cb := func(v any) {}
	first := s.Subscribe(cb)
	second := s.Subscribe(cb)

	require.NotEmpty(t, first.ID())
	require.NotEmpty(t, second.ID())
	assert.NotEqual(t, first.ID(), second.ID())

	first.Unsubscribe()
	assert.Equal(t, 1, s.ObserverCount())
	assert.True(t, second.Active())
}
