package host

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Publisher is the subset of *redis.Client used by Redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Redis publishes envelopes to "<prefix>:<channel>" on a redis server. Host
// runtimes subscribe to that channel.
type Redis struct {
	client Publisher
	prefix string
	closer func() error
	closed atomic.Bool
	logger logger.Logger
}

// Connect opens a redis client for addr, which is either host:port or a
// redis:// URL, and checks it with PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedis creates a transport publishing through client. If client also
// implements Close, the transport closes it on Close.
func NewRedis(client Publisher, opts ...Option) *Redis {
	o := buildOptions("host.redis", opts)
	r := &Redis{client: client, prefix: o.prefix, logger: o.logger}
	if c, ok := client.(interface{ Close() error }); ok {
		r.closer = c.Close
	}
	return r
}

// Topic returns the redis channel used for a host channel.
func (r *Redis) Topic(channel string) string {
	return r.prefix + ":" + channel
}

// Send publishes one envelope.
func (r *Redis) Send(ctx context.Context, channel, name, payload string) error {
	if r.closed.Load() {
		return ErrTransportClosed
	}
	data, err := Envelope{Channel: channel, Name: name, Payload: payload}.marshal()
	if err != nil {
		metrics.RecordTransportSend("redis", "error")
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	receivers, err := r.client.Publish(ctx, r.Topic(channel), data).Result()
	if err != nil {
		metrics.RecordTransportSend("redis", "error")
		return fmt.Errorf("%w %s: %w", ErrPublish, r.Topic(channel), err)
	}
	if receivers == 0 {
		r.logger.Debug(ctx, "no host subscribed", logger.String("topic", r.Topic(channel)), logger.String("name", name))
	}
	metrics.RecordTransportSend("redis", "ok")
	return nil
}

// Close stops the transport and closes the underlying client.
func (r *Redis) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	if r.closer != nil {
		return r.closer()
	}
	return nil
}
