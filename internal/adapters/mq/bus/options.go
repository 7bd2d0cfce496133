package bus

import "github.com/okian/profilebridge/pkg/logger"

// Option configures a bus.
type Option func(*config)

// ErrorHook observes subscriber failures after they are logged and counted.
type ErrorHook func(sub Subscription, kind string, err error)

type config struct {
	logger      logger.Logger
	onError     ErrorHook
	queueSize   int
	workerCount int
}

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHook registers a callback for subscriber failures.
func WithErrorHook(h ErrorHook) Option {
	return func(c *config) { c.onError = h }
}

// WithQueueSize bounds the async bus backlog.
func WithQueueSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithWorkerCount sets the number of async dispatch workers.
func WithWorkerCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workerCount = n
		}
	}
}
