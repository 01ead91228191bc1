package statebus

import "errors"

var (
	// ErrInvalidChannel is returned when a channel name is empty.
	ErrInvalidChannel = errors.New("invalid channel name")

	// ErrMissingCallback is returned when a subscription is requested without a callback.
	ErrMissingCallback = errors.New("missing subscriber callback")

	// ErrMissingValue is returned when SetState is called with a nil value.
	// Zero values (false, 0, "") are accepted; only nil is rejected.
	ErrMissingValue = errors.New("missing value")

	// ErrInvalidConfig is returned when a stream config fails validation.
	ErrInvalidConfig = errors.New("invalid stream config")

	// ErrConfigConflict is returned when a registry supplies a stream config
	// that differs from the one already in force for the shared default channel.
	ErrConfigConflict = errors.New("stream config conflicts with shared default channel")
)
