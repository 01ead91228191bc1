package statebus

import (
	"io"
	"log/slog"
)

// Option configures a Registry.
type Option func(*Registry)

// WithChannelMap binds the registry to an explicit channel map instead of
// the process-wide default. Registries sharing a map observe the same
// channels; an isolated map is the mechanism for test isolation.
// A nil map is ignored.
func WithChannelMap(m *ChannelMap) Option {
	return func(r *Registry) {
		if m != nil {
			r.channels = m
		}
	}
}

// WithStreamConfig sets the config applied to every stream this registry
// lazily creates, the default channel included.
func WithStreamConfig(cfg Config) Option {
	return func(r *Registry) {
		r.config = cfg
	}
}

// WithLogger configures structured logging for the registry and the
// streams it creates. The default logger discards everything. A nil
// logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	filter Filter
	replay ReplayPolicy
}

func newSubscribeOptions(opts ...SubscribeOption) subscribeOptions {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFilter restricts delivery to values the predicate accepts, for live
// publishes and replays alike. A nil filter is ignored.
func WithFilter(f Filter) SubscribeOption {
	return func(o *subscribeOptions) {
		if f != nil {
			o.filter = f
		}
	}
}

// WithReplay overrides the stream's default replay policy for this
// subscription. Unknown policies are ignored.
func WithReplay(p ReplayPolicy) SubscribeOption {
	return func(o *subscribeOptions) {
		if p.Valid() {
			o.replay = p
		}
	}
}
