package statebus

import (
	"fmt"
	"log/slog"
	"sync"
)

// DefaultChannel is the channel slot every registry materializes at
// construction time. The config recorded by the first registry to populate
// it in a given ChannelMap is canonical for that map; later registries
// sharing the map must omit their config or supply an equal one.
const DefaultChannel = "default"

// ChannelMap is the backing store mapping channel names to streams.
// Registries sharing a ChannelMap observe the same channels. The zero
// value is not usable; create maps with NewChannelMap.
type ChannelMap struct {
	mu            sync.Mutex
	streams       map[string]*Stream
	defaultConfig *Config
}

// NewChannelMap creates an empty channel map, typically to isolate a
// registry from the process-wide default map.
func NewChannelMap() *ChannelMap {
	return &ChannelMap{streams: make(map[string]*Stream)}
}

// Len returns the number of materialized channels.
func (m *ChannelMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// getOrCreate returns the stream for name, creating it from cfg when
// absent. The check-then-create is atomic under the map lock, so two
// callers racing on the same name always observe the same stream.
func (m *ChannelMap) getOrCreate(name string, cfg Config, logger *slog.Logger) (*Stream, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.streams[name]; ok {
		return s, false
	}

	s := newStream(name, cfg, logger)
	m.streams[name] = s
	if name == DefaultChannel && m.defaultConfig == nil {
		c := cfg
		m.defaultConfig = &c
	}
	return s, true
}

// ensureDefault installs the default channel if absent and records its
// config as canonical. When the slot already exists and the caller
// supplied an explicit config, the configs must be structurally equal.
func (m *ChannelMap) ensureDefault(cfg Config, explicit bool, logger *slog.Logger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.streams[DefaultChannel]; ok {
		if explicit && m.defaultConfig != nil && !m.defaultConfig.Equal(cfg) {
			return fmt.Errorf("%w: %q is already configured with buffer size %d and replay %q",
				ErrConfigConflict, DefaultChannel, m.defaultConfig.BufferSize, m.defaultConfig.Replay)
		}
		return nil
	}

	m.streams[DefaultChannel] = newStream(DefaultChannel, cfg, logger)
	c := cfg
	m.defaultConfig = &c
	return nil
}

var (
	defaultChannels     *ChannelMap
	defaultChannelsOnce sync.Once
)

// defaultChannelMap returns the process-wide shared channel map, created
// lazily on first access. It lives for the process lifetime; tests needing
// isolation should inject their own map via WithChannelMap.
func defaultChannelMap() *ChannelMap {
	defaultChannelsOnce.Do(func() {
		defaultChannels = NewChannelMap()
	})
	return defaultChannels
}

// Registry addresses streams by channel name, lazily materializing a
// stream with the registry's config the first time a name is touched.
// Registries constructed without an explicit ChannelMap all bind to a
// single process-wide map, which is how independently constructed
// registries observe the same channels.
//
// Registry is safe for concurrent use.
type Registry struct {
	channels *ChannelMap
	config   Config
	logger   *slog.Logger
}

// New creates a registry.
//
// Example:
//
//	registry, err := statebus.New(
//	    statebus.WithStreamConfig(statebus.Config{BufferSize: 100, Replay: statebus.ReplayAll}),
//	    statebus.WithLogger(logger),
//	)
//
// The default channel is materialized immediately. If it already exists in
// the bound map and an explicit config was supplied that is not equal to
// the one in force, New fails with ErrConfigConflict and the registry is
// not usable. An invalid config fails with ErrInvalidConfig.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{logger: discardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	if r.channels == nil {
		r.channels = defaultChannelMap()
	}

	explicit := !r.config.isZero()
	cfg, err := r.config.normalize()
	if err != nil {
		return nil, err
	}
	r.config = cfg

	if err := r.channels.ensureDefault(cfg, explicit, r.logger); err != nil {
		return nil, err
	}

	r.logger.Info("statebus registry ready",
		slog.Int("buffer_size", cfg.BufferSize),
		slog.String("replay", cfg.Replay.String()))

	return r, nil
}

// Config returns the normalized stream config this registry applies to
// channels it creates.
func (r *Registry) Config() Config {
	return r.config
}

// Channel returns the stream for name, creating it on first touch. The
// returned stream may be used directly for publishing and subscribing.
func (r *Registry) Channel(name string) (*Stream, error) {
	if name == "" {
		return nil, ErrInvalidChannel
	}

	s, created := r.channels.getOrCreate(name, r.config, r.logger)
	if created {
		r.logger.Debug("channel created",
			slog.String("channel", name),
			slog.Int("buffer_size", r.config.BufferSize),
			slog.String("replay", r.config.Replay.String()))
	}
	return s, nil
}

// SetState publishes value on the named channel, creating the channel if
// needed. A nil value fails with ErrMissingValue; any other value, zero
// values included, is accepted. Validation happens before any stream is
// touched, so a failed call has no side effects.
func (r *Registry) SetState(name string, value any) error {
	if name == "" {
		return ErrInvalidChannel
	}
	if value == nil {
		return ErrMissingValue
	}

	s, err := r.Channel(name)
	if err != nil {
		return err
	}
	s.Publish(value)
	return nil
}

// Subscribe registers cb on the named channel, creating the channel if
// needed, and returns the subscription handle. The buffered history is
// replayed to cb per the effective replay policy before Subscribe returns.
func (r *Registry) Subscribe(name string, cb Callback, opts ...SubscribeOption) (*Subscription, error) {
	if name == "" {
		return nil, ErrInvalidChannel
	}
	if cb == nil {
		return nil, ErrMissingCallback
	}

	s, err := r.Channel(name)
	if err != nil {
		return nil, err
	}
	return s.Subscribe(cb, opts...), nil
}

// UnsubscribeAll removes every subscription from the named channel,
// creating the channel if it does not exist yet.
func (r *Registry) UnsubscribeAll(name string) error {
	s, err := r.Channel(name)
	if err != nil {
		return err
	}
	s.UnsubscribeAll()
	return nil
}

// ClearBuffer empties the named channel's history buffer, creating the
// channel if it does not exist yet.
func (r *Registry) ClearBuffer(name string) error {
	s, err := r.Channel(name)
	if err != nil {
		return err
	}
	s.ClearBuffer()
	return nil
}

// ReplayPolicy returns the named channel's default replay policy. Like
// every registry operation it lazily creates the channel, keeping the
// contract that a channel exists once it has been addressed.
func (r *Registry) ReplayPolicy(name string) (ReplayPolicy, error) {
	s, err := r.Channel(name)
	if err != nil {
		return "", err
	}
	return s.ReplayPolicy(), nil
}
