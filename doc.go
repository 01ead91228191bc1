// Package statebus provides an in-process, multi-channel publish/subscribe
// primitive: a named-channel registry where each channel is a
// bounded-history multicast value stream. It exists to decouple
// independently deployed modules that need to exchange state without a
// shared framework dependency.
//
// # Core Components
//
// Stream is a bounded-history multicast stream for one channel. Publishing
// appends to a FIFO history buffer and delivers the value synchronously to
// every eligible subscription; subscribing replays buffered history before
// returning.
//
// Registry maps channel names to streams, lazily creating them on first
// access. Registries constructed without an explicit ChannelMap share a
// single process-wide map, so independently constructed registries observe
// the same channels.
//
// Subscription is the handle returned by Subscribe, carrying a unique
// identity and the Pause, Resume, and Unsubscribe controls.
//
// # Basic Usage
//
//	registry, err := statebus.New(
//	    statebus.WithStreamConfig(statebus.Config{BufferSize: 10, Replay: statebus.ReplayAll}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sub, err := registry.Subscribe("cart", func(v any) {
//	    render(v)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Unsubscribe()
//
//	if err := registry.SetState("cart", cartState); err != nil {
//	    log.Fatal(err)
//	}
//
// # Replay
//
// Each stream buffers its most recent values up to the configured
// capacity, oldest evicted first. At subscribe time, and again at resume
// time, the buffer is replayed to the subscription per the effective
// replay policy: ReplayLast delivers only the newest buffered value,
// ReplayAll delivers the whole buffer oldest-first. The stream default can
// be overridden per subscription:
//
//	registry.Subscribe("cart", render, statebus.WithReplay(statebus.ReplayAll))
//
// # Filtering
//
// Subscriptions may carry a predicate; values it rejects are never
// delivered, in replays or live:
//
//	registry.Subscribe("users", logUser, statebus.WithFilter(func(v any) bool {
//	    return v.(User).Age < 30
//	}))
//
// For type-safe consumption of heterogeneous channels, On subscribes a
// typed callback and filters out values of other types:
//
//	statebus.On(registry, "users", func(u User) { logUser(u) })
//
// # Delivery Semantics
//
// Delivery is synchronous, in-process, and best-effort: Publish blocks
// until every eligible callback has returned, in subscription order. The
// eligible set is snapshotted before the pass begins, so a callback that
// subscribes, unsubscribes, or pauses does not affect the in-flight pass,
// and a reentrant Publish completes its own pass before the outer pass
// continues. A panicking callback propagates to the publisher and aborts
// the rest of the pass; wrap callbacks with Recover to isolate failures
// instead. Values evicted from the buffer before subscribe time and not
// published afterward are permanently lost to that subscriber.
//
// # Shared Default Registry
//
// The first registry to populate the "default" channel in a shared map
// fixes that slot's config. Later registries on the same map must omit
// their config or supply an equal one; anything else fails construction
// with ErrConfigConflict. Tests should isolate themselves from the
// process-wide map:
//
//	registry, err := statebus.New(statebus.WithChannelMap(statebus.NewChannelMap()))
//
// # Configuration
//
// Stream configs can come from the environment (STATEBUS_BUFFER_SIZE,
// STATEBUS_REPLAY_POLICY), with a .env file loaded on first use:
//
//	cfg, err := statebus.ConfigFromEnv()
//
// # Thread Safety
//
// All exported types are safe for concurrent use. Each stream serializes
// state mutation behind one mutex and runs callbacks outside it; the
// channel map serializes create-if-absent, so two goroutines racing on the
// same channel name always observe the same stream.
package statebus
