package host

import (
	"context"
	"sync/atomic"

	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Log is a transport that writes every event to the structured log. It is
// used when no host runtime is attached.
type Log struct {
	logger logger.Logger
	closed atomic.Bool
}

// NewLog creates a log transport.
func NewLog(opts ...Option) *Log {
	o := buildOptions("host.log", opts)
	return &Log{logger: o.logger}
}

// Send logs the event.
func (l *Log) Send(ctx context.Context, channel, name, payload string) error {
	if l.closed.Load() {
		return ErrTransportClosed
	}
	l.logger.Info(ctx, "host event",
		logger.String("channel", channel),
		logger.String("name", name),
		logger.String("payload", payload),
	)
	metrics.RecordTransportSend("log", "ok")
	return nil
}

// Close stops the transport.
func (l *Log) Close() error {
	l.closed.Store(true)
	return nil
}
