package bus

import "errors"

// Sentinel kinds for bus errors.
var (
	ErrBackpressure = errors.New("bus backpressure")
	ErrClosed       = errors.New("bus closed")
	ErrHandlerPanic = errors.New("subscriber panicked")
	ErrNilEvent     = errors.New("nil event")
)
