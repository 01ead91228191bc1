package statebus

// On subscribes a type-safe callback to the named channel. Values that are
// not of type T are filtered out before delivery, replay included, so
// heterogeneous channels can be consumed without type assertions. A
// WithFilter option, if supplied, is applied on top of the type filter.
//
// Example:
//
//	type UserUpdated struct {
//	    ID string
//	}
//
//	sub, err := statebus.On(registry, "users", func(evt UserUpdated) {
//	    refresh(evt.ID)
//	})
func On[T any](r *Registry, channel string, fn func(T), opts ...SubscribeOption) (*Subscription, error) {
	if channel == "" {
		return nil, ErrInvalidChannel
	}
	if fn == nil {
		return nil, ErrMissingCallback
	}

	s, err := r.Channel(channel)
	if err != nil {
		return nil, err
	}
	return OnStream(s, fn, opts...), nil
}

// OnStream subscribes a type-safe callback directly on a stream. See On.
// OnStream panics if fn is nil.
func OnStream[T any](s *Stream, fn func(T), opts ...SubscribeOption) *Subscription {
	if fn == nil {
		panic("statebus: nil subscription callback")
	}

	options := newSubscribeOptions(opts...)
	userFilter := options.filter

	typeFilter := func(v any) bool {
		if _, ok := v.(T); !ok {
			return false
		}
		return userFilter == nil || userFilter(v)
	}
	cb := func(v any) {
		fn(v.(T))
	}

	return s.Subscribe(cb, WithFilter(typeFilter), WithReplay(options.replay))
}
