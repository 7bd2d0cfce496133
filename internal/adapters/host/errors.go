package host

import "errors"

// Sentinel errors for host transports.
var (
	// ErrTransportClosed is returned by Send after Close.
	ErrTransportClosed = errors.New("host transport closed")
	// ErrPublish wraps a failed redis publish.
	ErrPublish = errors.New("publish to host channel")
)
