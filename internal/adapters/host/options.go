package host

import (
	"net/http"
	"time"

	"github.com/okian/profilebridge/pkg/logger"
)

// Default websocket settings.
const (
	DefaultSendBuffer   = 256
	DefaultWriteTimeout = 5 * time.Second
	DefaultRedisPrefix  = "profilebridge"
)

// Option configures a transport.
type Option func(*options)

type options struct {
	logger       logger.Logger
	sendBuffer   int
	writeTimeout time.Duration
	checkOrigin  func(*http.Request) bool
	prefix       string
}

func buildOptions(component string, opts []Option) options {
	o := options{
		sendBuffer:   DefaultSendBuffer,
		writeTimeout: DefaultWriteTimeout,
		prefix:       DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named(component)
	}
	return o
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSendBuffer bounds the per-client websocket backlog. Frames beyond it
// are dropped.
func WithSendBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sendBuffer = n
		}
	}
}

// WithWriteTimeout sets the websocket write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

// WithCheckOrigin overrides the websocket origin check. The default accepts
// every origin.
func WithCheckOrigin(f func(*http.Request) bool) Option {
	return func(o *options) { o.checkOrigin = f }
}

// WithChannelPrefix sets the redis channel prefix.
func WithChannelPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}
