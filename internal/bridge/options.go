package bridge

import (
	"github.com/okian/profilebridge/internal/domain/model"
	"github.com/okian/profilebridge/pkg/logger"
)

// Option configures the bridge and its translator and constructor.
type Option func(*settings)

type settings struct {
	channel string
	filter  Filter
	sink    DiagnosticSink
	logger  logger.Logger
}

func defaults() settings {
	return settings{
		channel: DefaultChannel,
		filter:  ExcludeProviders(model.Facebook),
	}
}

func apply(opts []Option, component string) settings {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(component)
	}
	return s
}

// WithChannel overrides the host destination channel.
func WithChannel(channel string) Option {
	return func(s *settings) {
		if channel != "" {
			s.channel = channel
		}
	}
}

// WithFilter replaces the outbound provider filter.
func WithFilter(f Filter) Option {
	return func(s *settings) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithDiagnosticSink receives the diagnostics of every inbound call that
// degraded a collection.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(s *settings) { s.sink = sink }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
