package statebus

import "log/slog"

// Decorator wraps a callback to add cross-cutting behavior. Decorators
// compose like HTTP middleware and are applied with Decorate.
//
// Example:
//
//	cb := statebus.Decorate(
//	    func(v any) { process(v) },
//	    statebus.Logging(logger),
//	    statebus.Recover(logger),
//	)
//	registry.Subscribe("orders", cb)
type Decorator func(Callback) Callback

// Decorate applies decorators to a callback. The first decorator in the
// list becomes the outermost wrapper and executes first.
func Decorate(cb Callback, decorators ...Decorator) Callback {
	for i := len(decorators) - 1; i >= 0; i-- {
		cb = decorators[i](cb)
	}
	return cb
}

// Recover converts the fail-fast delivery contract into
// isolate-and-continue for one subscription: a panic in the wrapped
// callback is logged and swallowed instead of propagating to the
// publisher, so later subscriptions in the delivery pass still run.
func Recover(logger *slog.Logger) Decorator {
	if logger == nil {
		logger = discardLogger()
	}
	return func(next Callback) Callback {
		return func(value any) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("subscriber panic recovered",
						slog.Any("panic", rec))
				}
			}()
			next(value)
		}
	}
}

// Logging traces every delivery to the wrapped callback at debug level.
func Logging(logger *slog.Logger) Decorator {
	if logger == nil {
		logger = discardLogger()
	}
	return func(next Callback) Callback {
		return func(value any) {
			logger.Debug("delivering value", slog.Any("value", value))
			next(value)
		}
	}
}
