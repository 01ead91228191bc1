package statebus

import "fmt"

// ReplayPolicy controls how much buffered history a subscription receives
// at subscribe and resume time.
type ReplayPolicy string

const (
	// ReplayLast delivers only the newest buffered value.
	ReplayLast ReplayPolicy = "last"

	// ReplayAll delivers the entire buffer, oldest first.
	ReplayAll ReplayPolicy = "all"
)

// Valid reports whether p is a known replay policy.
func (p ReplayPolicy) Valid() bool {
	return p == ReplayLast || p == ReplayAll
}

// String returns the string representation of the policy.
func (p ReplayPolicy) String() string {
	return string(p)
}

// DefaultBufferSize is the history capacity used when none is configured.
const DefaultBufferSize = 1

// Config describes how a stream buffers and replays published values.
// The zero value is valid and resolves to the defaults: buffer size 1,
// replay last. A Config is immutable once a stream is created from it.
type Config struct {
	// BufferSize is the history capacity. Must be positive; zero resolves
	// to DefaultBufferSize.
	BufferSize int

	// Replay is the default replay policy for subscriptions on streams
	// created from this config. Empty resolves to ReplayLast.
	Replay ReplayPolicy
}

// normalize resolves zero fields to defaults and validates the rest.
func (c Config) normalize() (Config, error) {
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.BufferSize < 0 {
		return Config{}, fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.Replay == "" {
		c.Replay = ReplayLast
	}
	if !c.Replay.Valid() {
		return Config{}, fmt.Errorf("%w: unknown replay policy %q", ErrInvalidConfig, c.Replay)
	}
	return c, nil
}

// isZero reports whether the config was left entirely unset.
func (c Config) isZero() bool {
	return c == Config{}
}

// Equal reports whether two configs resolve to the same buffer size and
// replay policy. The comparison is structural over the two fields; an
// invalid config is never equal to anything.
func (c Config) Equal(other Config) bool {
	a, err := c.normalize()
	if err != nil {
		return false
	}
	b, err := other.normalize()
	if err != nil {
		return false
	}
	return a == b
}
